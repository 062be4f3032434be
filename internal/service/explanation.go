package service

import (
	"fmt"
	"strings"

	"cinepulse-recommendation-service/internal/models"
)

// Explanation is the user-facing reasoning for one pick. It never mentions
// scores.
type Explanation struct {
	Paragraph string
	Reasons   []string
}

// ExplanationGenerator turns a ranked pick into fixed-template language.
type ExplanationGenerator struct{}

func NewExplanationGenerator() ExplanationGenerator {
	return ExplanationGenerator{}
}

// Explain builds the templated paragraph and bullet reasons for m.
func (ExplanationGenerator) Explain(m models.Movie, mood string, _ models.ScoreBreakdown) Explanation {
	return Explanation{
		Paragraph: paragraph(m),
		Reasons:   reasons(m),
	}
}

// Summary is the overall sentence for the whole result.
func (ExplanationGenerator) Summary(mood string) string {
	return fmt.Sprintf("Based on your feeling of '%s', I've curated a few stories that I believe will "+
		"provide the comfort and engagement you're looking for. These selections were made with "+
		"your emotional well-being as the highest priority.", mood)
}

func paragraph(m models.Movie) string {
	parts := []string{
		fmt.Sprintf("I've selected '%s' because %s", m.Title, toneClause(m.Tone)),
		paceClause(m.Pace),
		"It aligns with how you're feeling right now, offering a safe space to just... be.",
	}
	return strings.Join(parts, " ")
}

func toneClause(t models.Tone) string {
	switch t {
	case models.ToneUplifting:
		return "its gentle and hopeful tone matches your current state perfectly."
	case models.ToneHeavy:
		return "it offers a deep, reflective experience that respects your solemn mood."
	default:
		return "it provides a balanced perspective for your afternoon."
	}
}

func paceClause(p models.Pace) string {
	switch p {
	case models.PaceSlow:
		return "The deliberate, steady pace allows you to breathe and truly soak in the atmosphere."
	case models.PaceFast:
		return "The energetic rhythm will help you disconnect and find a new spark of excitement."
	default:
		return "Its even rhythm keeps you engaged without asking too much of you."
	}
}

func reasons(m models.Movie) []string {
	tone := string(m.Tone)
	if tone == "" {
		tone = "balanced"
	}
	pace := string(m.Pace)
	if pace == "" {
		pace = "steady"
	}
	return []string{
		fmt.Sprintf("Matches your preference for %s storytelling", tone),
		fmt.Sprintf("The %s pace respects your current energy levels", pace),
		"Offers an emotional journey that feels safe and grounded",
		"Selected specifically to avoid any emotionally heavy triggers",
	}
}
