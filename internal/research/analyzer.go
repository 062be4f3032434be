package research

import (
	"hash/fnv"
	"strings"

	"cinepulse-recommendation-service/internal/models"
)

// Profile is the emotional metadata inferred from a title's text.
type Profile struct {
	Arc    []string
	Tone   models.Tone
	Pace   models.Pace
	Ending models.EndingType
}

var fallbackArcs = [][]string{
	{"calm", "discovery", "hopeful"},
	{"tension", "conflict", "catharsis"},
	{"joy", "romance", "warmth"},
	{"grief", "reflection", "acceptance"},
	{"curiosity", "wonder", "enlightenment"},
}

var (
	upliftingWords = []string{"funny", "laugh", "happy"}
	heavyWords     = []string{"kill", "murder", "dark", "tragic"}
)

// Analyze infers a profile from the title and overview with keyword
// heuristics. The result depends only on its inputs.
func Analyze(title, overview string) Profile {
	text := strings.TrimSpace(title + " " + overview)
	lower := strings.ToLower(text)

	tone := toneOf(lower)
	return Profile{
		Arc:    arcOf(lower, title),
		Tone:   tone,
		Pace:   paceOf(text),
		Ending: endingFor(tone),
	}
}

func paceOf(text string) models.Pace {
	words := len(strings.Fields(text))
	switch {
	case words > 100:
		return models.PaceSlow
	case words < 50:
		return models.PaceFast
	default:
		return models.PaceMedium
	}
}

func toneOf(lower string) models.Tone {
	switch {
	case containsAny(lower, upliftingWords):
		return models.ToneUplifting
	case containsAny(lower, heavyWords):
		return models.ToneHeavy
	default:
		return models.ToneNeutral
	}
}

func arcOf(lower, title string) []string {
	switch {
	case containsAny(lower, []string{"war", "fight"}):
		return []string{"tension", "intense conflict", "solemnity"}
	case containsAny(lower, []string{"love", "romance"}):
		return []string{"whimsical", "warmth", "tender"}
	case containsAny(lower, []string{"death", "sad"}):
		return []string{"grief", "quiet reflection", "acceptance"}
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(title))))
	arc := fallbackArcs[h.Sum32()%uint32(len(fallbackArcs))]
	return append([]string(nil), arc...)
}

func endingFor(t models.Tone) models.EndingType {
	switch t {
	case models.ToneUplifting:
		return models.EndingHopeful
	case models.ToneHeavy:
		return models.EndingBittersweet
	default:
		return models.EndingNeutral
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
