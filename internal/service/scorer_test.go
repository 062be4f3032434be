package service

import (
	"math"
	"testing"

	"cinepulse-recommendation-service/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAlignmentScorerScore(t *testing.T) {
	s := NewAlignmentScorer(DefaultPolicy(), DefaultWeights())

	tests := []struct {
		name        string
		movie       models.Movie
		mood        string
		intent      string
		wantEmotion float64
		wantIntent  float64
		wantTotal   float64
	}{
		{
			name:  "happy uplifting no intent",
			movie: movie(1, "A", models.ToneUplifting, models.PaceMedium, 100),
			mood:  "happy", wantEmotion: 1.0, wantIntent: 1.0, wantTotal: 0.55,
		},
		{
			name:  "happy heavy no intent",
			movie: movie(2, "B", models.ToneHeavy, models.PaceMedium, 100),
			mood:  "happy", wantEmotion: 0.5, wantIntent: 1.0, wantTotal: 0.40,
		},
		{
			name:  "mood lookup is case-insensitive",
			movie: movie(3, "C", models.ToneHeavy, models.PaceSlow, 100),
			mood:  "SAD", wantEmotion: 1.0, wantIntent: 1.0, wantTotal: 0.55,
		},
		{
			name:  "unknown mood targets neutral",
			movie: movie(4, "D", models.ToneNeutral, models.PaceSlow, 100),
			mood:  "pensive", wantEmotion: 1.0, wantIntent: 1.0, wantTotal: 0.55,
		},
		{
			name:  "intent pace match",
			movie: movie(5, "E", models.ToneUplifting, models.PaceSlow, 100),
			mood:  "happy", intent: "relax", wantEmotion: 1.0, wantIntent: 1.0, wantTotal: 0.55,
		},
		{
			name:  "intent pace mismatch",
			movie: movie(6, "F", models.ToneUplifting, models.PaceFast, 100),
			mood:  "happy", intent: "relax", wantEmotion: 1.0, wantIntent: 0.5, wantTotal: 0.425,
		},
		{
			name:  "unknown intent is partial",
			movie: movie(7, "G", models.ToneUplifting, models.PaceFast, 100),
			mood:  "happy", intent: "learn", wantEmotion: 1.0, wantIntent: 0.5, wantTotal: 0.425,
		},
		{
			name:  "bored maps to unreachable tone",
			movie: movie(8, "H", models.ToneUplifting, models.PaceFast, 100),
			mood:  "bored", wantEmotion: 0.5, wantIntent: 1.0, wantTotal: 0.40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.movie, tt.mood, tt.intent)
			if got.Emotion != tt.wantEmotion || got.Intent != tt.wantIntent {
				t.Errorf("sub-scores = (%v, %v), want (%v, %v)", got.Emotion, got.Intent, tt.wantEmotion, tt.wantIntent)
			}
			if !almostEqual(got.Total, tt.wantTotal) {
				t.Errorf("total = %v, want %v", got.Total, tt.wantTotal)
			}
		})
	}
}

func TestAlignmentScorerRankIsStable(t *testing.T) {
	s := NewAlignmentScorer(DefaultPolicy(), DefaultWeights())
	candidates := []models.Movie{
		movie(1, "Heavy One", models.ToneHeavy, models.PaceSlow, 100),
		movie(2, "Bright One", models.ToneUplifting, models.PaceSlow, 100),
		movie(3, "Heavy Two", models.ToneHeavy, models.PaceSlow, 100),
		movie(4, "Bright Two", models.ToneUplifting, models.PaceSlow, 100),
	}

	ranked := s.Rank(candidates, "happy", "")
	wantOrder := []int{2, 4, 1, 3}
	for i, id := range wantOrder {
		if ranked[i].Movie.ID != id {
			t.Fatalf("position %d = movie %d, want %d", i, ranked[i].Movie.ID, id)
		}
	}

	again := s.Rank(candidates, "happy", "")
	for i := range ranked {
		if ranked[i].Movie.ID != again[i].Movie.ID {
			t.Fatal("ranking is not deterministic")
		}
	}
}

func TestAlignmentScorerCustomPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.MoodTone = map[string]string{"Bored": "uplifting"}
	s := NewAlignmentScorer(p, Weights{Emotion: 1, Intent: 0})

	got := s.Score(movie(1, "A", models.ToneUplifting, models.PaceFast, 90), "bored", "")
	if got.Total != 1 {
		t.Errorf("total = %v, want 1", got.Total)
	}
}
