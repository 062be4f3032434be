package service

import (
	"context"
	"errors"
	"sync"

	"cinepulse-recommendation-service/internal/models"
)

func intPtr(v int) *int { return &v }

func movie(id int, title string, tone models.Tone, pace models.Pace, runtime int, genres ...string) models.Movie {
	m := models.Movie{
		ID:           id,
		Title:        title,
		ContentType:  models.ContentMovie,
		Genres:       genres,
		EmotionalArc: []string{"calm", "discovery", "hopeful"},
		EndingType:   models.EndingHopeful,
		Pace:         pace,
		Tone:         tone,
	}
	if runtime > 0 {
		m.Runtime = intPtr(runtime)
	}
	m.Normalize()
	return m
}

// fakeCatalog answers queries with CatalogFilter.Matches over a fixed slice.
type fakeCatalog struct {
	movies   []models.Movie
	queryErr error
	queries  []models.CatalogFilter
	sampled  int
}

func (c *fakeCatalog) Query(_ context.Context, f models.CatalogFilter) ([]models.Movie, error) {
	c.queries = append(c.queries, f)
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	out := []models.Movie{}
	for _, m := range c.movies {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *fakeCatalog) Sample(_ context.Context, limit int) ([]models.Movie, error) {
	c.sampled++
	if limit > len(c.movies) {
		limit = len(c.movies)
	}
	return append([]models.Movie(nil), c.movies[:limit]...), nil
}

type fakeEnricher struct {
	text  string
	err   error
	block bool
}

func (e fakeEnricher) Explain(ctx context.Context, title, _, _ string) (string, error) {
	if e.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if e.err != nil {
		return "", e.err
	}
	return e.text + " " + title, nil
}

var errUpstream = errors.New("upstream exploded")

type fakeSnapshotStore struct {
	mu    sync.Mutex
	saved []models.RecommendationSnapshot
}

func (s *fakeSnapshotStore) SaveSnapshots(_ context.Context, snaps []models.RecommendationSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, snaps...)
	return nil
}

func (s *fakeSnapshotStore) GetSnapshots(_ context.Context, requestID string) ([]models.RecommendationSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.RecommendationSnapshot{}
	for _, snap := range s.saved {
		if snap.RequestID == requestID {
			out = append(out, snap)
		}
	}
	return out, nil
}
