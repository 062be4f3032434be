package service

import (
	"strings"

	"cinepulse-recommendation-service/internal/models"
)

// SafetyFilter maps a mood to hard exclusion rules.
type SafetyFilter struct {
	vulnerable     map[string]bool
	toneCeiling    models.Tone
	maxIntensity   float64
	excludedGenres []string
}

func NewSafetyFilter(p Policy) SafetyFilter {
	vulnerable := make(map[string]bool, len(p.VulnerableMoods))
	for _, m := range p.VulnerableMoods {
		vulnerable[strings.ToLower(m)] = true
	}
	return SafetyFilter{
		vulnerable:     vulnerable,
		toneCeiling:    p.SafeToneCeiling,
		maxIntensity:   p.SafeMaxIntensity,
		excludedGenres: append([]string(nil), p.ExcludedGenres...),
	}
}

// Constraints returns the exclusions for mood. Vulnerable moods are capped
// to the safe tone and intensity with distressing genres removed; every
// other mood is unrestricted.
func (f SafetyFilter) Constraints(mood string) models.SafetyConstraints {
	if f.vulnerable[strings.ToLower(strings.TrimSpace(mood))] {
		return models.SafetyConstraints{
			ToneCeiling:    f.toneCeiling,
			MaxIntensity:   f.maxIntensity,
			ExcludedGenres: append([]string(nil), f.excludedGenres...),
		}
	}
	return models.SafetyConstraints{
		MaxIntensity:   1.0,
		ExcludedGenres: []string{},
	}
}
