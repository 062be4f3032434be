package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cinepulse-recommendation-service/internal/metrics"
	"cinepulse-recommendation-service/internal/models"
)

const (
	defaultPosterURL   = "https://images.unsplash.com/photo-1594908900066-3f47337549d8?w=800&h=1200&fit=crop"
	defaultBackdropURL = "https://images.unsplash.com/photo-1536440136628-849c177e76a1?w=1200"
	defaultIntentText  = "watch something good"
	snapshotTimeout    = 10 * time.Second
)

// Enricher produces a personalised sentence for a pick. Any error means
// "unavailable"; the templated paragraph is used instead.
type Enricher interface {
	Explain(ctx context.Context, movieTitle, mood, intent string) (string, error)
}

// SnapshotStore persists ranked picks per request.
type SnapshotStore interface {
	SaveSnapshots(ctx context.Context, snapshots []models.RecommendationSnapshot) error
	GetSnapshots(ctx context.Context, requestID string) ([]models.RecommendationSnapshot, error)
}

// RecommendationConfig carries the immutable pipeline settings.
type RecommendationConfig struct {
	Policy             Policy
	Weights            Weights
	DefaultMaxRuntime  int
	TopN               int
	FallbackSampleSize int
	EnrichmentTimeout  time.Duration
}

// RecommendationService runs the filter, score, rank and explain pipeline.
// It holds no per-request state.
type RecommendationService struct {
	policy    Policy
	weights   Weights
	safety    SafetyFilter
	contexts  ContextResolver
	selector  *CandidateSelector
	scorer    *AlignmentScorer
	explainer ExplanationGenerator
	enricher  Enricher
	snapshots SnapshotStore

	topN          int
	enrichTimeout time.Duration
	newRequestID  func() string
	pending       sync.WaitGroup
}

// NewRecommendationService wires the pipeline stages. enricher and snapshots
// may be nil.
func NewRecommendationService(
	cfg RecommendationConfig,
	catalog Catalog,
	enricher Enricher,
	snapshots SnapshotStore,
) *RecommendationService {
	if cfg.TopN <= 0 {
		cfg.TopN = 3
	}
	if cfg.FallbackSampleSize <= 0 {
		cfg.FallbackSampleSize = 20
	}
	if cfg.DefaultMaxRuntime <= 0 {
		cfg.DefaultMaxRuntime = 180
	}
	if cfg.EnrichmentTimeout <= 0 {
		cfg.EnrichmentTimeout = 8 * time.Second
	}

	return &RecommendationService{
		policy:        cfg.Policy,
		weights:       cfg.Weights,
		safety:        NewSafetyFilter(cfg.Policy),
		contexts:      NewContextResolver(cfg.Policy, cfg.DefaultMaxRuntime),
		selector:      NewCandidateSelector(catalog, cfg.FallbackSampleSize),
		scorer:        NewAlignmentScorer(cfg.Policy, cfg.Weights),
		explainer:     NewExplanationGenerator(),
		enricher:      enricher,
		snapshots:     snapshots,
		topN:          cfg.TopN,
		enrichTimeout: cfg.EnrichmentTimeout,
		newRequestID:  func() string { return uuid.NewString() },
	}
}

// Recommend returns up to TopN ranked picks for the request. An empty
// constrained result is not an error: the pipeline falls back to a sample
// and flags the response.
func (s *RecommendationService) Recommend(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResponse, error) {
	start := time.Now()
	req.Normalize()
	if req.Mood == "" {
		metrics.RecordRecommendation("invalid", time.Since(start))
		return nil, fmt.Errorf("%w: mood is required", ErrInvalidRequest)
	}

	// 1. Safety filtering
	safety := s.safety.Constraints(req.Mood)

	// 2. Context resolution
	situation := s.contexts.Resolve(req.Context)
	filter := models.CatalogFilter{
		MaxRuntime:     situation.MaxRuntime,
		Pace:           situation.PreferredPace,
		Tone:           safety.ToneCeiling,
		ExcludedGenres: safety.ExcludedGenres,
	}
	if pace, ok := RequestedPace(req.Context); ok {
		filter.Pace = pace
	}

	// 3. Candidate selection
	candidates, fallback, err := s.selector.Select(ctx, filter)
	if err != nil {
		metrics.RecordRecommendation("catalog_error", time.Since(start))
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	// 4. Scoring
	ranked := s.scorer.Rank(candidates, req.Mood, req.Intent)
	if len(ranked) > s.topN {
		ranked = ranked[:s.topN]
	}

	// 5. Explanation
	explanations := make([]Explanation, len(ranked))
	for i, sm := range ranked {
		explanations[i] = s.explainer.Explain(sm.Movie, req.Mood, sm.Score)
	}
	s.enrich(ctx, ranked, explanations, req)

	// 6. Assembly
	recs := make([]models.MovieRecommendation, len(ranked))
	for i, sm := range ranked {
		recs[i] = NewMovieRecommendation(sm.Movie, explanations[i])
	}

	resp := &models.RecommendationResponse{
		RequestID:       s.newRequestID(),
		Recommendations: recs,
		Explanation:     s.explainer.Summary(req.Mood),
		Fallback:        fallback,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	slog.Info("recommendations generated",
		"request_id", resp.RequestID,
		"mood", req.Mood,
		"candidates", len(candidates),
		"returned", len(recs),
		"fallback", fallback,
		"safety_restricted", safety.Restricted(),
	)

	s.persistSnapshots(resp.RequestID, req.Mood, ranked, fallback)
	metrics.RecordRecommendation("ok", time.Since(start))
	return resp, nil
}

// enrich replaces templated paragraphs with generated text where the
// enricher answers in time. Failures leave the template in place.
func (s *RecommendationService) enrich(ctx context.Context, ranked []ScoredMovie, explanations []Explanation, req models.RecommendationRequest) {
	if s.enricher == nil {
		metrics.EnrichmentTotal.WithLabelValues("disabled").Add(float64(len(ranked)))
		return
	}

	intent := req.Intent
	if intent == "" {
		intent = defaultIntentText
	}

	var g errgroup.Group
	g.SetLimit(s.topN)
	for i, sm := range ranked {
		g.Go(func() error {
			text, err := s.explainWithTimeout(ctx, sm.Movie.Title, req.Mood, intent)
			text = strings.TrimSpace(text)
			if err != nil || text == "" {
				slog.Warn("personalised reasoning unavailable, using template",
					"title", sm.Movie.Title, "error", err)
				metrics.RecordEnrichment(false)
				return nil
			}
			metrics.RecordEnrichment(true)
			explanations[i].Paragraph = text
			return nil
		})
	}
	_ = g.Wait()
}

// explainWithTimeout returns once the deadline passes even if the enricher
// ignores its context.
func (s *RecommendationService) explainWithTimeout(ctx context.Context, title, mood, intent string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.enrichTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := s.enricher.Explain(callCtx, title, mood, intent)
		ch <- result{text: text, err: err}
	}()

	select {
	case r := <-ch:
		return r.text, r.err
	case <-callCtx.Done():
		return "", callCtx.Err()
	}
}

func (s *RecommendationService) persistSnapshots(requestID, mood string, ranked []ScoredMovie, fallback bool) {
	if s.snapshots == nil || len(ranked) == 0 {
		return
	}

	snapshots := make([]models.RecommendationSnapshot, len(ranked))
	for i, sm := range ranked {
		snapshots[i] = models.RecommendationSnapshot{
			RequestID: requestID,
			Mood:      mood,
			MovieID:   sm.Movie.ID,
			Rank:      i + 1,
			Score:     math.Round(sm.Score.Total*10000) / 10000,
			Fallback:  fallback,
		}
	}

	// Persist snapshots asynchronously
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		if err := s.snapshots.SaveSnapshots(ctx, snapshots); err != nil {
			slog.Error("failed to persist recommendation snapshots", "request_id", requestID, "error", err)
		}
	}()
}

// Wait blocks until in-flight snapshot writes finish.
func (s *RecommendationService) Wait() {
	s.pending.Wait()
}

// Snapshots returns the stored picks of a previous request.
func (s *RecommendationService) Snapshots(ctx context.Context, requestID string) ([]models.RecommendationSnapshot, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, fmt.Errorf("%w: malformed request id", ErrInvalidRequest)
	}
	if s.snapshots == nil {
		return []models.RecommendationSnapshot{}, nil
	}
	return s.snapshots.GetSnapshots(ctx, requestID)
}

// Policy returns the active lookup tables.
func (s *RecommendationService) Policy() Policy {
	return s.policy
}

// Weights returns the configured weights.
func (s *RecommendationService) Weights() Weights {
	return s.weights
}

// NewMovieRecommendation builds a response entry for m, defaulting missing
// optional fields.
func NewMovieRecommendation(m models.Movie, exp Explanation) models.MovieRecommendation {
	tag := "Balanced"
	if m.Tone != "" {
		tag = capitalize(string(m.Tone))
	}
	arc := "Steady journey"
	if len(m.EmotionalArc) > 0 {
		arc = strings.Join(m.EmotionalArc, " -> ")
	}
	platforms := []models.StreamingPlatform(m.StreamingPlatforms)
	if platforms == nil {
		platforms = []models.StreamingPlatform{}
	}
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	backdrop := m.BackdropURL
	if backdrop == "" {
		backdrop = defaultBackdropURL
	}
	contentType := m.ContentType
	if contentType == "" {
		contentType = models.ContentMovie
	}

	return models.MovieRecommendation{
		ID:                 m.ID,
		Title:              m.Title,
		Year:               m.ReleaseYear,
		Type:               contentType,
		Overview:           m.Overview,
		Genres:             genres,
		Runtime:            m.Runtime,
		Poster:             defaultPosterURL,
		Backdrop:           backdrop,
		EmotionalTag:       tag,
		EmotionalArc:       arc,
		TrailerURL:         m.TrailerURL,
		StreamingPlatforms: platforms,
		Reasons:            exp.Reasons,
		Reasoning:          exp.Paragraph,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
