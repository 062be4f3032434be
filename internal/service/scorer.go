package service

import (
	"sort"
	"strings"

	"cinepulse-recommendation-service/internal/models"
)

// Weights scale the alignment sub-scores. They need not sum to 1. Only
// Emotion and Intent contribute to the total; the rest are reported.
type Weights struct {
	Emotion     float64 `json:"emotion"`
	Intent      float64 `json:"intent"`
	Arc         float64 `json:"arc"`
	Context     float64 `json:"context"`
	Personality float64 `json:"personality"`
}

// DefaultWeights returns the standard weighting.
func DefaultWeights() Weights {
	return Weights{Emotion: 0.30, Intent: 0.25, Arc: 0.20, Context: 0.15, Personality: 0.10}
}

const (
	matchScore   = 1.0
	partialScore = 0.5
)

// AlignmentScorer rates how well a title fits a mood and intent. The
// sub-scores are a coarse match/no-match heuristic (1.0 or 0.5), not a
// similarity measure.
type AlignmentScorer struct {
	moodTone   map[string]string
	intentPace map[string]string
	weights    Weights
}

func NewAlignmentScorer(p Policy, w Weights) *AlignmentScorer {
	return &AlignmentScorer{
		moodTone:   lowerKeys(p.MoodTone),
		intentPace: lowerKeys(p.IntentPace),
		weights:    w,
	}
}

// Score is a pure function of (movie, mood, intent).
func (s *AlignmentScorer) Score(m models.Movie, mood, intent string) models.ScoreBreakdown {
	emotion := s.emotionScore(m, mood)
	intentScore := s.intentScore(m, intent)
	return models.ScoreBreakdown{
		Emotion: emotion,
		Intent:  intentScore,
		Total:   emotion*s.weights.Emotion + intentScore*s.weights.Intent,
	}
}

func (s *AlignmentScorer) emotionScore(m models.Movie, mood string) float64 {
	target, ok := s.moodTone[strings.ToLower(strings.TrimSpace(mood))]
	if !ok {
		target = string(models.ToneNeutral)
	}
	if string(m.Tone) == target {
		return matchScore
	}
	return partialScore
}

func (s *AlignmentScorer) intentScore(m models.Movie, intent string) float64 {
	intent = strings.ToLower(strings.TrimSpace(intent))
	if intent == "" {
		return matchScore
	}
	target, ok := s.intentPace[intent]
	if ok && string(m.Pace) == target {
		return matchScore
	}
	return partialScore
}

// ScoredMovie pairs a candidate with its breakdown.
type ScoredMovie struct {
	Movie models.Movie
	Score models.ScoreBreakdown
}

// Rank scores every candidate and sorts by total descending. Equal totals
// keep their candidate order.
func (s *AlignmentScorer) Rank(candidates []models.Movie, mood, intent string) []ScoredMovie {
	scored := make([]ScoredMovie, len(candidates))
	for i, m := range candidates {
		scored[i] = ScoredMovie{Movie: m, Score: s.Score(m, mood, intent)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score.Total > scored[j].Score.Total
	})
	return scored
}
