package research

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"cinepulse-recommendation-service/internal/models"
	"cinepulse-recommendation-service/internal/tmdb"
)

type stubProvider struct {
	name    string
	finding *Finding
	err     error

	mu    sync.Mutex
	calls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Lookup(context.Context, string) (*Finding, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.finding, p.err
}

type recordingCatalog struct {
	added []*models.Movie
	err   error
}

func (c *recordingCatalog) AddMovie(_ context.Context, m *models.Movie) error {
	if c.err != nil {
		return c.err
	}
	m.ID = len(c.added) + 1
	c.added = append(c.added, m)
	return nil
}

type stubSearcher struct {
	match *tmdb.TMDBMovie
	err   error
}

func (s stubSearcher) Configured() bool { return true }

func (s stubSearcher) SearchMovie(context.Context, string) (*tmdb.TMDBMovie, error) {
	return s.match, s.err
}

func names(ps ...Provider) []Provider { return ps }

func TestResearcherRotation(t *testing.T) {
	a := &stubProvider{name: "a"}
	b := &stubProvider{name: "b"}
	c := &stubProvider{name: "c"}
	r := NewResearcher(names(a, b, c), 1, NewKnowledgeBase(), nil, nil)

	want := [][]string{
		{"b", "c", "a", "knowledge_base"},
		{"c", "a", "b", "knowledge_base"},
		{"a", "b", "c", "knowledge_base"},
	}
	for i, w := range want {
		if got := r.Order(); !reflect.DeepEqual(got, w) {
			t.Fatalf("call %d order = %v, want %v", i, got, w)
		}
		_, _ = r.Discover(context.Background(), "Dangal")
	}
}

func TestResearcherFirstHitWins(t *testing.T) {
	failing := &stubProvider{name: "serpapi", err: errors.New("quota exceeded")}
	empty := &stubProvider{name: "web"}
	hit := &stubProvider{name: "other", finding: &Finding{Title: "Amelie", Overview: "A shy waitress finds love in Paris.", Runtime: 122}}
	later := &stubProvider{name: "later", finding: &Finding{Title: "Wrong", Overview: "x"}}
	catalog := &recordingCatalog{}

	r := NewResearcher(names(failing, empty, hit, later), 0, nil, nil, catalog)
	m, err := r.Discover(context.Background(), "Amelie")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if m.Title != "Amelie" || *m.Runtime != 122 {
		t.Errorf("unexpected movie %+v", m)
	}
	if later.calls != 0 {
		t.Error("providers after the first hit should not be called")
	}
	if len(catalog.added) != 1 || m.ID != 1 {
		t.Errorf("expected movie to be stored, got %d", len(catalog.added))
	}
	if !reflect.DeepEqual(m.EmotionalArc, []string{"whimsical", "warmth", "tender"}) {
		t.Errorf("arc = %v", m.EmotionalArc)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("researched movie invalid: %v", err)
	}
}

func TestResearcherKnowledgeBaseFallback(t *testing.T) {
	r := NewResearcher(nil, 0, NewKnowledgeBase(), nil, &recordingCatalog{})
	m, err := r.Discover(context.Background(), "lagaan")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if m.Title != "Lagaan: Once Upon a Time in India" || *m.Runtime != 224 {
		t.Errorf("unexpected movie %+v", m)
	}
	if m.ContentType != models.ContentMovie {
		t.Errorf("type = %s", m.ContentType)
	}
}

func TestResearcherNotFound(t *testing.T) {
	catalog := &recordingCatalog{}
	r := NewResearcher(names(&stubProvider{name: "a"}), 0, NewKnowledgeBase(), nil, catalog)
	if _, err := r.Discover(context.Background(), "Completely Unknown Film"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(catalog.added) != 0 {
		t.Error("nothing should be stored")
	}
}

func TestResearcherEmptyTitle(t *testing.T) {
	r := NewResearcher(nil, 0, NewKnowledgeBase(), nil, nil)
	if _, err := r.Discover(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestResearcherTMDBEnrichment(t *testing.T) {
	searcher := stubSearcher{match: &tmdb.TMDBMovie{ID: 20453, BackdropPath: "/dangal.jpg", ReleaseDate: "2016-12-21"}}
	r := NewResearcher(nil, 0, NewKnowledgeBase(), searcher, &recordingCatalog{})

	m, err := r.Discover(context.Background(), "Dangal")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if m.TMDBId == nil || *m.TMDBId != 20453 {
		t.Errorf("tmdb id = %v", m.TMDBId)
	}
	if m.BackdropURL != models.TMDBImageBaseW780+"/dangal.jpg" {
		t.Errorf("backdrop = %q", m.BackdropURL)
	}
	if m.ReleaseYear == nil || *m.ReleaseYear != 2016 {
		t.Errorf("year = %v", m.ReleaseYear)
	}
}

func TestResearcherEnrichmentFailureIsNotFatal(t *testing.T) {
	r := NewResearcher(nil, 0, NewKnowledgeBase(), stubSearcher{err: errors.New("boom")}, &recordingCatalog{})
	m, err := r.Discover(context.Background(), "Mirzapur")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if m.TMDBId != nil || m.ContentType != models.ContentSeries {
		t.Errorf("unexpected movie %+v", m)
	}
}

func TestResearcherCatalogError(t *testing.T) {
	r := NewResearcher(nil, 0, NewKnowledgeBase(), nil, &recordingCatalog{err: errors.New("db down")})
	if _, err := r.Discover(context.Background(), "RRR"); err == nil {
		t.Fatal("expected storage error")
	}
}

func TestNewDefaultSkipsUnconfiguredProviders(t *testing.T) {
	r := NewDefault(Settings{WikiBaseURL: "https://en.wikipedia.org/wiki"}, nil, nil)
	if got, want := r.Order(), []string{"web", "knowledge_base"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Order() = %v, want %v", got, want)
	}

	r = NewDefault(Settings{SerpAPIKey: "k"}, nil, nil)
	if got, want := r.Order(), []string{"serpapi", "knowledge_base"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Order() = %v, want %v", got, want)
	}
}
