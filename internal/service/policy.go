package service

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"cinepulse-recommendation-service/internal/models"
)

// Policy holds the lookup tables that drive safety filtering and scoring.
// It is read once at startup and never mutated afterwards.
type Policy struct {
	VulnerableMoods  []string          `yaml:"vulnerable_moods" json:"vulnerable_moods"`
	SafeToneCeiling  models.Tone       `yaml:"safe_tone_ceiling" json:"safe_tone_ceiling"`
	SafeMaxIntensity float64           `yaml:"safe_max_intensity" json:"safe_max_intensity"`
	ExcludedGenres   []string          `yaml:"excluded_genres" json:"excluded_genres"`
	MoodTone         map[string]string `yaml:"mood_tone" json:"mood_tone"`
	IntentPace       map[string]string `yaml:"intent_pace" json:"intent_pace"`
	NightMaxRuntime  int               `yaml:"night_max_runtime" json:"night_max_runtime"`
	NightPace        models.Pace       `yaml:"night_pace" json:"night_pace"`
}

// DefaultPolicy returns the built-in tables.
func DefaultPolicy() Policy {
	return Policy{
		VulnerableMoods:  []string{"fatigue", "anxiety", "stress", "sadness", "vulnerability"},
		SafeToneCeiling:  models.ToneUplifting,
		SafeMaxIntensity: 0.4,
		ExcludedGenres:   []string{"Horror", "Tragedy", "Dark Thriller"},
		MoodTone: map[string]string{
			"happy":   "uplifting",
			"sad":     "heavy",
			"anxious": "uplifting",
			"bored":   "dynamic",
		},
		IntentPace: map[string]string{
			"relax":   "slow",
			"inspire": "medium",
			"escape":  "fast",
		},
		NightMaxRuntime: 120,
		NightPace:       models.PaceSlow,
	}
}

// LoadPolicy reads a YAML policy file over the defaults. An empty path
// returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return p, fmt.Errorf("parse policy file: %w", err)
	}
	f.applyTo(&p)
	p.normalize()
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// policyFile mirrors Policy with every field optional. A table present in
// the file replaces the default table as a whole.
type policyFile struct {
	VulnerableMoods  []string          `yaml:"vulnerable_moods"`
	SafeToneCeiling  *models.Tone      `yaml:"safe_tone_ceiling"`
	SafeMaxIntensity *float64          `yaml:"safe_max_intensity"`
	ExcludedGenres   []string          `yaml:"excluded_genres"`
	MoodTone         map[string]string `yaml:"mood_tone"`
	IntentPace       map[string]string `yaml:"intent_pace"`
	NightMaxRuntime  *int              `yaml:"night_max_runtime"`
	NightPace        *models.Pace      `yaml:"night_pace"`
}

func (f policyFile) applyTo(p *Policy) {
	if f.VulnerableMoods != nil {
		p.VulnerableMoods = f.VulnerableMoods
	}
	if f.SafeToneCeiling != nil {
		p.SafeToneCeiling = *f.SafeToneCeiling
	}
	if f.SafeMaxIntensity != nil {
		p.SafeMaxIntensity = *f.SafeMaxIntensity
	}
	if f.ExcludedGenres != nil {
		p.ExcludedGenres = f.ExcludedGenres
	}
	if f.MoodTone != nil {
		p.MoodTone = f.MoodTone
	}
	if f.IntentPace != nil {
		p.IntentPace = f.IntentPace
	}
	if f.NightMaxRuntime != nil {
		p.NightMaxRuntime = *f.NightMaxRuntime
	}
	if f.NightPace != nil {
		p.NightPace = *f.NightPace
	}
}

// Validate checks that enum-valued entries are usable.
func (p Policy) Validate() error {
	if p.SafeToneCeiling != "" && !p.SafeToneCeiling.Valid() {
		return fmt.Errorf("policy: invalid safe tone ceiling %q", p.SafeToneCeiling)
	}
	if p.SafeMaxIntensity < 0 || p.SafeMaxIntensity > 1 {
		return fmt.Errorf("policy: safe max intensity must be within [0,1], got %v", p.SafeMaxIntensity)
	}
	if p.NightPace != "" && !p.NightPace.Valid() {
		return fmt.Errorf("policy: invalid night pace %q", p.NightPace)
	}
	if p.NightMaxRuntime <= 0 {
		return fmt.Errorf("policy: night max runtime must be positive, got %d", p.NightMaxRuntime)
	}
	return nil
}

// normalize lower-cases lookup keys so matching is case-insensitive.
func (p *Policy) normalize() {
	for i, m := range p.VulnerableMoods {
		p.VulnerableMoods[i] = strings.ToLower(strings.TrimSpace(m))
	}
	p.MoodTone = lowerKeys(p.MoodTone)
	p.IntentPace = lowerKeys(p.IntentPace)
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
