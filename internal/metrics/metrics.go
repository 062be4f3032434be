// Package metrics exposes Prometheus instrumentation for the recommendation
// pipeline, the catalog cache, generative enrichment and title research.
// Metrics are served in text format at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation pipeline
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinepulse_recommendations_total",
			Help: "Total recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "invalid", "catalog_error"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinepulse_recommendation_duration_seconds",
			Help:    "End-to-end duration of the recommendation pipeline",
			Buckets: prometheus.DefBuckets,
		},
	)

	CandidateFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinepulse_candidate_fallback_total",
			Help: "Requests where no title satisfied the hard constraints and an unconstrained sample was used",
		},
	)

	EnrichmentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinepulse_enrichment_total",
			Help: "Generative reasoning calls by result",
		},
		[]string{"result"}, // "ok", "failed", "disabled"
	)

	// Catalog cache
	CatalogCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinepulse_catalog_cache_total",
			Help: "Catalog query cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Research
	ResearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinepulse_research_total",
			Help: "Title research attempts by provider and result",
		},
		[]string{"provider", "result"}, // result: "found", "empty", "error"
	)

	// Chat
	ChatTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinepulse_chat_total",
			Help: "Assistant chat turns by result",
		},
		[]string{"result"}, // result: "ok", "disabled", "failed"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinepulse_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)
)

// RecordRecommendation records the outcome and latency of one pipeline run.
func RecordRecommendation(outcome string, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordEnrichment counts one generative reasoning call.
func RecordEnrichment(ok bool) {
	if ok {
		EnrichmentTotal.WithLabelValues("ok").Inc()
		return
	}
	EnrichmentTotal.WithLabelValues("failed").Inc()
}

// RecordCacheLookup counts a catalog cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CatalogCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	CatalogCacheTotal.WithLabelValues("miss").Inc()
}
