// Package metrics provides Prometheus metrics for the Footy Cards backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footy_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Scouting Metrics
	ScoutRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footy_scout_requests_total",
			Help: "Total scouting requests by outcome",
		},
		[]string{"result"}, // "success" or "error"
	)

	ScoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "footy_scout_duration_seconds",
			Help:    "End-to-end scouting pipeline latency",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	PortraitResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footy_portrait_resolutions_total",
			Help: "How card portraits were resolved",
		},
		[]string{"source"}, // "upload", "override", "generated", "suggested", "none"
	)

	// Gemini API Metrics
	GeminiRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footy_gemini_requests_total",
			Help: "Total Gemini API requests",
		},
	)

	GeminiAPILatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "footy_gemini_api_latency_seconds",
			Help:    "Gemini API call latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	GeminiErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footy_gemini_errors_total",
			Help: "Gemini API errors by type",
		},
		[]string{"type"}, // "network", "read", "api", "parse", "empty", "safety"
	)

	PortraitCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footy_portrait_cache_hits_total",
			Help: "Portrait cache hit count",
		},
	)

	// Collection Metrics
	CollectionCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footy_collection_cards_total",
			Help: "Total number of cards in collection",
		},
	)

	CollectionValueEUR = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footy_collection_value_eur",
			Help: "Total estimated market value of the collection in EUR",
		},
	)

	CollectionCardsByRarity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "footy_collection_cards_by_rarity",
			Help: "Number of cards in collection by rarity tier",
		},
		[]string{"rarity"},
	)
)
