package models

import (
	"strings"
	"time"
)

// RecommendationRequest describes how the user feels and what they want.
type RecommendationRequest struct {
	Mood        string         `json:"mood" validate:"required,max=64"`
	Intent      string         `json:"intent,omitempty" validate:"max=64"`
	Personality string         `json:"personality,omitempty" validate:"max=64"`
	Context     map[string]any `json:"context,omitempty"`
}

// Normalize trims the free-text fields.
func (r *RecommendationRequest) Normalize() {
	r.Mood = strings.TrimSpace(r.Mood)
	r.Intent = strings.TrimSpace(r.Intent)
	r.Personality = strings.TrimSpace(r.Personality)
}

// SafetyConstraints protect vulnerable moods from distressing content.
type SafetyConstraints struct {
	ToneCeiling    Tone     `json:"tone_ceiling,omitempty"`
	MaxIntensity   float64  `json:"max_intensity"`
	ExcludedGenres []string `json:"excluded_genres"`
}

// Restricted reports whether any exclusion applies.
func (s SafetyConstraints) Restricted() bool {
	return s.ToneCeiling != "" || len(s.ExcludedGenres) > 0
}

// ContextConstraints are derived from situational signals.
type ContextConstraints struct {
	MaxRuntime    int  `json:"max_runtime"`
	PreferredPace Pace `json:"preferred_pace,omitempty"`
}

// ScoreBreakdown is the per-candidate alignment result. Scores never leave
// the service in user-facing text.
type ScoreBreakdown struct {
	Emotion float64 `json:"emotion"`
	Intent  float64 `json:"intent"`
	Total   float64 `json:"total"`
}

// MovieRecommendation is one ranked pick in the response.
type MovieRecommendation struct {
	ID                 int                 `json:"id"`
	Title              string              `json:"title"`
	Year               *int                `json:"year,omitempty"`
	Type               ContentType         `json:"type"`
	Overview           string              `json:"overview"`
	Genres             []string            `json:"genres"`
	Runtime            *int                `json:"runtime,omitempty"`
	Poster             string              `json:"poster"`
	Backdrop           string              `json:"backdrop"`
	EmotionalTag       string              `json:"emotional_tag"`
	EmotionalArc       string              `json:"emotional_arc"`
	TrailerURL         string              `json:"trailer_url,omitempty"`
	StreamingPlatforms []StreamingPlatform `json:"streaming_platforms"`
	Reasons            []string            `json:"reasons"`
	Reasoning          string              `json:"reasoning"`
}

// RecommendationResponse is the final ranked output. Fallback is set when
// no catalog entry satisfied the hard constraints and an unconstrained
// sample was ranked instead.
type RecommendationResponse struct {
	RequestID       string                `json:"request_id"`
	Recommendations []MovieRecommendation `json:"recommendations"`
	Explanation     string                `json:"explanation"`
	Fallback        bool                  `json:"fallback"`
	GeneratedAt     string                `json:"generated_at"`
}

// RecommendationSnapshot stores a ranked pick for later inspection.
type RecommendationSnapshot struct {
	ID          int       `json:"id"`
	RequestID   string    `json:"request_id"`
	Mood        string    `json:"mood"`
	MovieID     int       `json:"movie_id"`
	Rank        int       `json:"rank"`
	Score       float64   `json:"score"`
	Fallback    bool      `json:"fallback"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ResearchRequest asks the discovery collaborator to profile a title.
type ResearchRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}
