package service

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"cinepulse-recommendation-service/internal/models"
)

// Context keys understood by the resolver.
const (
	ContextTimeOfDay  = "time_of_day"
	ContextMaxRuntime = "max_runtime"
	ContextPace       = "pace"
)

// ContextResolver derives situational constraints from request context.
type ContextResolver struct {
	defaultMaxRuntime int
	nightMaxRuntime   int
	nightPace         models.Pace
}

func NewContextResolver(p Policy, defaultMaxRuntime int) ContextResolver {
	return ContextResolver{
		defaultMaxRuntime: defaultMaxRuntime,
		nightMaxRuntime:   p.NightMaxRuntime,
		nightPace:         p.NightPace,
	}
}

// Resolve returns the runtime cap and preferred pace for ctx. Night always
// wins over an explicit runtime override.
func (r ContextResolver) Resolve(ctx map[string]any) models.ContextConstraints {
	if len(ctx) == 0 {
		return models.ContextConstraints{MaxRuntime: r.defaultMaxRuntime}
	}

	if tod, ok := ctx[ContextTimeOfDay].(string); ok && strings.EqualFold(strings.TrimSpace(tod), "night") {
		return models.ContextConstraints{
			MaxRuntime:    r.nightMaxRuntime,
			PreferredPace: r.nightPace,
		}
	}

	maxRuntime := r.defaultMaxRuntime
	if v, ok := positiveInt(ctx[ContextMaxRuntime]); ok {
		maxRuntime = v
	}
	return models.ContextConstraints{MaxRuntime: maxRuntime}
}

// RequestedPace returns a valid pace carried verbatim in the request context.
func RequestedPace(ctx map[string]any) (models.Pace, bool) {
	s, ok := ctx[ContextPace].(string)
	if !ok {
		return "", false
	}
	p := models.Pace(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", false
	}
	return p, true
}

func positiveInt(v any) (int, bool) {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case float64:
		n = int(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return 0, false
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}
	return n, n > 0
}
