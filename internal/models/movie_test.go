package models

import (
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

func validMovie() Movie {
	return Movie{
		Title:        "Paddington 2",
		ContentType:  ContentMovie,
		Runtime:      intPtr(104),
		Genres:       []string{"Comedy", "Family"},
		EmotionalArc: []string{"calm", "conflict", "hopeful"},
		EndingType:   EndingHopeful,
		Pace:         PaceMedium,
		Tone:         ToneUplifting,
	}
}

func TestMovieValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Movie)
		wantErr string
	}{
		{name: "valid", mutate: func(m *Movie) {}},
		{name: "missing title", mutate: func(m *Movie) { m.Title = " " }, wantErr: "title is required"},
		{name: "bad tone", mutate: func(m *Movie) { m.Tone = "dynamic" }, wantErr: "invalid tone"},
		{name: "bad pace", mutate: func(m *Movie) { m.Pace = "glacial" }, wantErr: "invalid pace"},
		{name: "bad ending", mutate: func(m *Movie) { m.EndingType = "twist" }, wantErr: "invalid ending type"},
		{name: "empty arc", mutate: func(m *Movie) { m.EmotionalArc = nil }, wantErr: "emotional arc"},
		{name: "zero runtime", mutate: func(m *Movie) { m.Runtime = intPtr(0) }, wantErr: "runtime must be positive"},
		{name: "nil runtime allowed", mutate: func(m *Movie) { m.Runtime = nil }},
		{name: "bad content type", mutate: func(m *Movie) { m.ContentType = "short" }, wantErr: "invalid content type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMovie()
			tt.mutate(&m)
			err := m.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMovieNormalize(t *testing.T) {
	m := Movie{Title: "  Arrival "}
	m.Normalize()
	if m.Title != "Arrival" {
		t.Errorf("expected trimmed title, got %q", m.Title)
	}
	if m.ContentType != ContentMovie {
		t.Errorf("expected default content type movie, got %q", m.ContentType)
	}
	if m.Genres == nil || m.StreamingPlatforms == nil {
		t.Error("expected empty slices, got nil")
	}
}

func TestCatalogFilterMatches(t *testing.T) {
	horror := validMovie()
	horror.Tone = ToneHeavy
	horror.Genres = []string{"horror"}

	unknownRuntime := validMovie()
	unknownRuntime.Runtime = nil

	tests := []struct {
		name   string
		filter CatalogFilter
		movie  Movie
		want   bool
	}{
		{name: "empty filter", filter: CatalogFilter{}, movie: validMovie(), want: true},
		{name: "runtime within cap", filter: CatalogFilter{MaxRuntime: 120}, movie: validMovie(), want: true},
		{name: "runtime over cap", filter: CatalogFilter{MaxRuntime: 90}, movie: validMovie(), want: false},
		{name: "unknown runtime with cap", filter: CatalogFilter{MaxRuntime: 120}, movie: unknownRuntime, want: false},
		{name: "tone mismatch", filter: CatalogFilter{Tone: ToneHeavy}, movie: validMovie(), want: false},
		{name: "pace match", filter: CatalogFilter{Pace: PaceMedium}, movie: validMovie(), want: true},
		{name: "ending mismatch", filter: CatalogFilter{EndingType: EndingBittersweet}, movie: validMovie(), want: false},
		{name: "excluded genre any case", filter: CatalogFilter{ExcludedGenres: []string{"Horror"}}, movie: horror, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.movie); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStreamingPlatformsScan(t *testing.T) {
	var p StreamingPlatforms
	if err := p.Scan([]byte(`[{"name":"Netflix","icon":"n.svg","url":"https://netflix.com"}]`)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(p) != 1 || p[0].Name != "Netflix" {
		t.Fatalf("unexpected platforms: %+v", p)
	}

	if err := p.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if p == nil || len(p) != 0 {
		t.Errorf("expected empty non-nil platforms, got %#v", p)
	}

	if err := p.Scan(42); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestStreamingPlatformsValueNil(t *testing.T) {
	var p StreamingPlatforms
	v, err := p.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if string(v.([]byte)) != "[]" {
		t.Errorf("expected [], got %s", v)
	}
}
