package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cinepulse-recommendation-service/internal/models"
)

func TestCandidateSelectorMatches(t *testing.T) {
	catalog := &fakeCatalog{movies: []models.Movie{
		movie(1, "Long", models.ToneUplifting, models.PaceSlow, 150),
		movie(2, "Short", models.ToneUplifting, models.PaceSlow, 90),
	}}
	s := NewCandidateSelector(catalog, 20)

	got, fallback, err := s.Select(context.Background(), models.CatalogFilter{MaxRuntime: 120})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if fallback {
		t.Error("unexpected fallback")
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("expected only the 90 minute movie, got %+v", got)
	}
	if catalog.sampled != 0 {
		t.Error("sample should not be taken when constraints match")
	}
}

func TestCandidateSelectorFallback(t *testing.T) {
	var movies []models.Movie
	for i := 1; i <= 30; i++ {
		movies = append(movies, movie(i, fmt.Sprintf("Heavy %d", i), models.ToneHeavy, models.PaceFast, 200))
	}
	catalog := &fakeCatalog{movies: movies}
	s := NewCandidateSelector(catalog, 20)

	got, fallback, err := s.Select(context.Background(), models.CatalogFilter{Tone: models.ToneUplifting})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !fallback {
		t.Error("expected fallback")
	}
	if len(got) != 20 {
		t.Errorf("expected 20 sampled movies, got %d", len(got))
	}
}

func TestCandidateSelectorEmptyCatalog(t *testing.T) {
	s := NewCandidateSelector(&fakeCatalog{}, 20)
	got, fallback, err := s.Select(context.Background(), models.CatalogFilter{})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !fallback || len(got) != 0 {
		t.Errorf("expected empty fallback, got %d movies fallback=%v", len(got), fallback)
	}
}

func TestCandidateSelectorQueryError(t *testing.T) {
	s := NewCandidateSelector(&fakeCatalog{queryErr: errUpstream}, 20)
	if _, _, err := s.Select(context.Background(), models.CatalogFilter{}); !errors.Is(err, errUpstream) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
}
