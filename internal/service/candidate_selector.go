package service

import (
	"context"
	"fmt"
	"log/slog"

	"cinepulse-recommendation-service/internal/metrics"
	"cinepulse-recommendation-service/internal/models"
)

// Catalog is the read side of the catalog store.
type Catalog interface {
	Query(ctx context.Context, filter models.CatalogFilter) ([]models.Movie, error)
	Sample(ctx context.Context, limit int) ([]models.Movie, error)
}

// CandidateSelector applies hard constraints to the catalog.
type CandidateSelector struct {
	catalog    Catalog
	sampleSize int
}

func NewCandidateSelector(catalog Catalog, sampleSize int) *CandidateSelector {
	return &CandidateSelector{catalog: catalog, sampleSize: sampleSize}
}

// Select returns every movie satisfying filter. When nothing matches it
// returns an unconstrained sample instead and reports fallback=true; the
// sample ignores safety and context constraints.
func (s *CandidateSelector) Select(ctx context.Context, filter models.CatalogFilter) ([]models.Movie, bool, error) {
	movies, err := s.catalog.Query(ctx, filter)
	if err != nil {
		return nil, false, fmt.Errorf("query candidates: %w", err)
	}
	if len(movies) > 0 {
		return movies, false, nil
	}

	slog.Warn("no catalog entries satisfy constraints, sampling unconstrained",
		"max_runtime", filter.MaxRuntime, "tone", filter.Tone, "pace", filter.Pace,
		"sample_size", s.sampleSize)
	metrics.CandidateFallbackTotal.Inc()

	sample, err := s.catalog.Sample(ctx, s.sampleSize)
	if err != nil {
		return nil, true, fmt.Errorf("sample candidates: %w", err)
	}
	if len(sample) > s.sampleSize {
		sample = sample[:s.sampleSize]
	}
	return sample, true, nil
}
