package service

import (
	"testing"

	"cinepulse-recommendation-service/internal/models"
)

func TestSafetyFilterConstraints(t *testing.T) {
	f := NewSafetyFilter(DefaultPolicy())

	for _, mood := range []string{"fatigue", "Anxiety", " stress ", "sadness", "VULNERABILITY"} {
		t.Run(mood, func(t *testing.T) {
			c := f.Constraints(mood)
			if c.ToneCeiling != models.ToneUplifting {
				t.Errorf("tone ceiling = %q, want uplifting", c.ToneCeiling)
			}
			if c.MaxIntensity != 0.4 {
				t.Errorf("max intensity = %v, want 0.4", c.MaxIntensity)
			}
			if len(c.ExcludedGenres) != 3 {
				t.Errorf("excluded genres = %v", c.ExcludedGenres)
			}
			if !c.Restricted() {
				t.Error("expected restricted constraints")
			}
		})
	}
}

func TestSafetyFilterUnrestricted(t *testing.T) {
	c := NewSafetyFilter(DefaultPolicy()).Constraints("happy")
	if c.ToneCeiling != "" {
		t.Errorf("tone ceiling = %q, want none", c.ToneCeiling)
	}
	if c.MaxIntensity != 1.0 {
		t.Errorf("max intensity = %v, want 1.0", c.MaxIntensity)
	}
	if c.ExcludedGenres == nil || len(c.ExcludedGenres) != 0 {
		t.Errorf("excluded genres = %#v, want empty", c.ExcludedGenres)
	}
	if c.Restricted() {
		t.Error("expected unrestricted constraints")
	}
}

func TestSafetyFilterDoesNotShareGenres(t *testing.T) {
	f := NewSafetyFilter(DefaultPolicy())
	c := f.Constraints("anxiety")
	c.ExcludedGenres[0] = "Comedy"
	if got := f.Constraints("anxiety").ExcludedGenres[0]; got != "Horror" {
		t.Errorf("filter state mutated through result: %q", got)
	}
}
