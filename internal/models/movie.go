package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Tone is the coarse emotional register of a title.
type Tone string

const (
	ToneUplifting Tone = "uplifting"
	ToneHeavy     Tone = "heavy"
	ToneNeutral   Tone = "neutral"
)

// Valid reports whether t is one of the fixed tone values.
func (t Tone) Valid() bool {
	switch t {
	case ToneUplifting, ToneHeavy, ToneNeutral:
		return true
	}
	return false
}

// Pace is the narrative tempo of a title.
type Pace string

const (
	PaceSlow   Pace = "slow"
	PaceMedium Pace = "medium"
	PaceFast   Pace = "fast"
)

// Valid reports whether p is one of the fixed pace values.
func (p Pace) Valid() bool {
	switch p {
	case PaceSlow, PaceMedium, PaceFast:
		return true
	}
	return false
}

// EndingType describes how a title resolves.
type EndingType string

const (
	EndingHopeful     EndingType = "hopeful"
	EndingNeutral     EndingType = "neutral"
	EndingBittersweet EndingType = "bittersweet"
)

// Valid reports whether e is one of the fixed ending values.
func (e EndingType) Valid() bool {
	switch e {
	case EndingHopeful, EndingNeutral, EndingBittersweet:
		return true
	}
	return false
}

// ContentType distinguishes films from series.
type ContentType string

const (
	ContentMovie  ContentType = "movie"
	ContentSeries ContentType = "series"
)

// StreamingPlatform is a place a title can be watched.
type StreamingPlatform struct {
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon" yaml:"icon"`
	URL  string `json:"url" yaml:"url"`
}

// StreamingPlatforms is stored as a JSONB array.
type StreamingPlatforms []StreamingPlatform

// Value implements driver.Valuer.
func (p StreamingPlatforms) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]StreamingPlatform(p))
}

// Scan implements sql.Scanner.
func (p *StreamingPlatforms) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*p = StreamingPlatforms{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan streaming platforms: unsupported type %T", src)
	}
	var out []StreamingPlatform
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan streaming platforms: %w", err)
	}
	if out == nil {
		out = []StreamingPlatform{}
	}
	*p = out
	return nil
}

// Movie is a catalog entry with its emotional metadata. The recommendation
// pipeline only ever reads it.
type Movie struct {
	ID                 int                `json:"id" yaml:"-"`
	TMDBId             *int               `json:"tmdb_id,omitempty" yaml:"tmdb_id,omitempty"`
	Title              string             `json:"title" yaml:"title"`
	ContentType        ContentType        `json:"type" yaml:"type"`
	Overview           string             `json:"overview" yaml:"overview"`
	ReleaseYear        *int               `json:"release_year,omitempty" yaml:"release_year,omitempty"`
	Runtime            *int               `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Genres             []string           `json:"genres" yaml:"genres"`
	EmotionalArc       []string           `json:"emotional_arc" yaml:"emotional_arc"`
	EndingType         EndingType         `json:"ending_type" yaml:"ending_type"`
	Pace               Pace               `json:"pace" yaml:"pace"`
	Tone               Tone               `json:"tone" yaml:"tone"`
	TrailerURL         string             `json:"trailer_url,omitempty" yaml:"trailer_url,omitempty"`
	BackdropURL        string             `json:"backdrop_url,omitempty" yaml:"backdrop_url,omitempty"`
	StreamingPlatforms StreamingPlatforms `json:"streaming_platforms" yaml:"streaming_platforms"`
	CreatedAt          time.Time          `json:"created_at" yaml:"-"`
}

// Normalize fills in defaults for optional fields.
func (m *Movie) Normalize() {
	m.Title = strings.TrimSpace(m.Title)
	if m.ContentType == "" {
		m.ContentType = ContentMovie
	}
	if m.Genres == nil {
		m.Genres = []string{}
	}
	if m.StreamingPlatforms == nil {
		m.StreamingPlatforms = StreamingPlatforms{}
	}
}

// Validate checks the catalog invariants.
func (m *Movie) Validate() error {
	var errs []error
	if strings.TrimSpace(m.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if m.ContentType != ContentMovie && m.ContentType != ContentSeries {
		errs = append(errs, fmt.Errorf("invalid content type %q", m.ContentType))
	}
	if !m.Tone.Valid() {
		errs = append(errs, fmt.Errorf("invalid tone %q", m.Tone))
	}
	if !m.Pace.Valid() {
		errs = append(errs, fmt.Errorf("invalid pace %q", m.Pace))
	}
	if !m.EndingType.Valid() {
		errs = append(errs, fmt.Errorf("invalid ending type %q", m.EndingType))
	}
	if len(m.EmotionalArc) == 0 {
		errs = append(errs, errors.New("emotional arc must have at least one element"))
	}
	if m.Runtime != nil && *m.Runtime <= 0 {
		errs = append(errs, fmt.Errorf("runtime must be positive, got %d", *m.Runtime))
	}
	if len(errs) > 0 {
		return fmt.Errorf("movie %q: %w", m.Title, errors.Join(errs...))
	}
	return nil
}

// CatalogFilter holds the hard constraints applied before scoring. Zero
// values mean "no constraint".
type CatalogFilter struct {
	MaxRuntime     int
	Pace           Pace
	Tone           Tone
	EndingType     EndingType
	ExcludedGenres []string
	Limit          int
}

// Matches reports whether m satisfies every set constraint. A movie with an
// unknown runtime never satisfies a runtime cap.
func (f CatalogFilter) Matches(m Movie) bool {
	if f.MaxRuntime > 0 && (m.Runtime == nil || *m.Runtime > f.MaxRuntime) {
		return false
	}
	if f.Pace != "" && m.Pace != f.Pace {
		return false
	}
	if f.Tone != "" && m.Tone != f.Tone {
		return false
	}
	if f.EndingType != "" && m.EndingType != f.EndingType {
		return false
	}
	for _, excluded := range f.ExcludedGenres {
		for _, g := range m.Genres {
			if strings.EqualFold(g, excluded) {
				return false
			}
		}
	}
	return true
}

// CacheKey returns a stable key fragment for the filter.
func (f CatalogFilter) CacheKey() string {
	genres := make([]string, len(f.ExcludedGenres))
	for i, g := range f.ExcludedGenres {
		genres[i] = strings.ToLower(g)
	}
	return fmt.Sprintf("%d:%s:%s:%s:%s:%d",
		f.MaxRuntime, f.Pace, f.Tone, f.EndingType, strings.Join(genres, ","), f.Limit)
}

const (
	TMDBImageBaseW200 = "https://image.tmdb.org/t/p/w200"
	TMDBImageBaseW500 = "https://image.tmdb.org/t/p/w500"
	TMDBImageBaseW780 = "https://image.tmdb.org/t/p/w780"
)
