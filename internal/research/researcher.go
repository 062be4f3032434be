// Package research discovers titles that are not yet catalogued. Providers
// are tried in a rotated order so load spreads across external sources; a
// built-in knowledge base is consulted last. Findings are profiled with a
// keyword heuristic and stored in the catalog.
package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/time/rate"

	"cinepulse-recommendation-service/internal/metrics"
	"cinepulse-recommendation-service/internal/models"
	"cinepulse-recommendation-service/internal/tmdb"
)

// ErrNotFound is returned when no provider knows the title.
var ErrNotFound = errors.New("research: title not found")

// Catalog stores discovered titles.
type Catalog interface {
	AddMovie(ctx context.Context, m *models.Movie) error
}

// TitleSearcher finds a TMDB match for enrichment.
type TitleSearcher interface {
	Configured() bool
	SearchMovie(ctx context.Context, query string) (*tmdb.TMDBMovie, error)
}

// Researcher runs discovery. It is safe for concurrent use.
type Researcher struct {
	providers []Provider
	fallback  Provider
	next      atomic.Uint64
	searcher  TitleSearcher
	catalog   Catalog
}

// NewResearcher creates a Researcher whose first call starts at providers[start].
// fallback and searcher may be nil.
func NewResearcher(providers []Provider, start int, fallback Provider, searcher TitleSearcher, catalog Catalog) *Researcher {
	r := &Researcher{
		providers: providers,
		fallback:  fallback,
		searcher:  searcher,
		catalog:   catalog,
	}
	if start > 0 {
		r.next.Store(uint64(start))
	}
	return r
}

// Order returns the provider names the next call would try, without
// advancing the rotation.
func (r *Researcher) Order() []string {
	names := []string{}
	for _, p := range rotate(r.providers, r.next.Load()) {
		names = append(names, p.Name())
	}
	if r.fallback != nil {
		names = append(names, r.fallback.Name())
	}
	return names
}

// Discover researches title, profiles it and adds it to the catalog.
func (r *Researcher) Discover(ctx context.Context, title string) (*models.Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("research: title is required")
	}
	slog.Info("researching new title", "title", title)

	finding, err := r.lookup(ctx, title)
	if err != nil {
		return nil, err
	}

	m := buildMovie(finding)
	r.enrich(ctx, m)

	if r.catalog != nil {
		if err := r.catalog.AddMovie(ctx, m); err != nil {
			return nil, fmt.Errorf("store researched title: %w", err)
		}
	}
	slog.Info("title researched", "title", m.Title, "tone", m.Tone, "pace", m.Pace)
	return m, nil
}

func (r *Researcher) lookup(ctx context.Context, title string) (*Finding, error) {
	var ordered []Provider
	if len(r.providers) > 0 {
		start := r.next.Add(1) - 1
		ordered = rotate(r.providers, start)
	}
	if r.fallback != nil {
		ordered = append(ordered, r.fallback)
	}

	for _, p := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := p.Lookup(ctx, title)
		switch {
		case err != nil:
			slog.Warn("research provider failed", "provider", p.Name(), "error", err)
			metrics.ResearchTotal.WithLabelValues(p.Name(), "error").Inc()
		case f == nil || strings.TrimSpace(f.Overview) == "":
			metrics.ResearchTotal.WithLabelValues(p.Name(), "empty").Inc()
		default:
			slog.Info("research successful", "provider", p.Name())
			metrics.ResearchTotal.WithLabelValues(p.Name(), "found").Inc()
			return f, nil
		}
	}
	return nil, ErrNotFound
}

func (r *Researcher) enrich(ctx context.Context, m *models.Movie) {
	if r.searcher == nil || !r.searcher.Configured() {
		return
	}
	match, err := r.searcher.SearchMovie(ctx, m.Title)
	if err != nil {
		if !errors.Is(err, tmdb.ErrNoResults) {
			slog.Warn("TMDB enrichment failed", "title", m.Title, "error", err)
		}
		return
	}

	id := match.ID
	m.TMDBId = &id
	if match.BackdropPath != "" {
		m.BackdropURL = models.TMDBImageBaseW780 + match.BackdropPath
	}
	if len(match.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(match.ReleaseDate[:4]); err == nil {
			m.ReleaseYear = &year
		}
	}
}

func buildMovie(f *Finding) *models.Movie {
	profile := Analyze(f.Title, f.Overview)

	runtime := f.Runtime
	if runtime <= 0 {
		runtime = defaultRuntime
	}
	genres := f.Genres
	if len(genres) == 0 {
		genres = []string{"Drama"}
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = models.ContentMovie
	}

	m := &models.Movie{
		Title:        f.Title,
		ContentType:  contentType,
		Overview:     f.Overview,
		Runtime:      &runtime,
		Genres:       genres,
		EmotionalArc: profile.Arc,
		EndingType:   profile.Ending,
		Pace:         profile.Pace,
		Tone:         profile.Tone,
	}
	m.Normalize()
	return m
}

func rotate(providers []Provider, start uint64) []Provider {
	n := len(providers)
	if n == 0 {
		return nil
	}
	idx := int(start % uint64(n))
	out := make([]Provider, 0, n)
	out = append(out, providers[idx:]...)
	return append(out, providers[:idx]...)
}

// Settings configures the default provider set.
type Settings struct {
	SerpAPIKey     string
	WikiBaseURL    string
	RequestsPerSec float64
}

// NewDefault builds a Researcher over SerpAPI (when a key is set), the web
// provider and the built-in knowledge base, sharing one outbound limiter.
func NewDefault(s Settings, searcher TitleSearcher, catalog Catalog) *Researcher {
	rps := s.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	var providers []Provider
	if p := NewSerpAPIProvider(s.SerpAPIKey, "", limiter); p != nil {
		providers = append(providers, p)
	}
	if p := NewWebProvider(s.WikiBaseURL, limiter); p != nil {
		providers = append(providers, p)
	}
	return NewResearcher(providers, 0, NewKnowledgeBase(), searcher, catalog)
}
