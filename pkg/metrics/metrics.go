// Package metrics provides Prometheus metrics for the scoutrank service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Cache metrics - hit/miss ratio is the primary health signal.
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	cacheReloads *prometheus.CounterVec
	cachedTeams  prometheus.Gauge
	cachedEvents prometheus.Gauge

	// Upstream metrics - round trips to the external data source.
	upstreamRequests *prometheus.CounterVec
	upstreamErrors   *prometheus.CounterVec
	upstreamLatency  prometheus.Histogram

	// Store metrics - durable document IO.
	storeSaveDuration prometheus.Histogram
	storeLoadDuration prometheus.Histogram

	// Rating metrics - region build and replay outcomes.
	replayDuration     prometheus.Histogram
	replayMatches      prometheus.Counter
	predictionAccuracy prometheus.Gauge
	regionTeams        prometheus.Gauge
	regionEvents       prometheus.Gauge

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scoutrank",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.cacheHits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Fresh cache records served without an upstream fetch",
	}, []string{"kind"})

	m.cacheMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Lookups that required a fetch-and-replace (absent or stale)",
	}, []string{"kind"})

	m.cacheReloads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_reloads_total",
		Help:      "Caller-requested reloads of existing records",
	}, []string{"kind"})

	m.cachedTeams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cached_teams",
		Help:      "Team records currently in the cache document",
	})

	m.cachedEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cached_events",
		Help:      "Event records currently in the cache document",
	})

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_requests_total",
		Help:      "Round trips issued to the upstream data source",
	}, []string{"kind"})

	m.upstreamErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_errors_total",
		Help:      "Failed upstream round trips",
	}, []string{"kind"})

	m.upstreamLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_latency_milliseconds",
		Help:      "Upstream round-trip latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeSaveDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_save_duration_milliseconds",
		Help:      "Whole-document save duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeLoadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_load_duration_milliseconds",
		Help:      "Whole-document load duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.replayDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_duration_milliseconds",
		Help:      "Chronological rating replay duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.replayMatches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_matches_total",
		Help:      "Matches replayed across all rating runs",
	})

	m.predictionAccuracy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_accuracy",
		Help:      "Fraction of loaded matches the last replay predicted correctly",
	})

	m.regionTeams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "region_teams",
		Help:      "Teams in the last built region",
	})

	m.regionEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "region_events",
		Help:      "Events in the last built region",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// GetRegistry returns the registry metrics are collected on.
func GetRegistry() *prometheus.Registry { return customRegistry }

// Package-level helpers against the global manager.

// RecordCacheHit records a fresh-record hit for the given kind (team/event).
func RecordCacheHit(kind string) { globalManager.cacheHits.WithLabelValues(kind).Inc() }

// RecordCacheMiss records a lookup that went upstream.
func RecordCacheMiss(kind string) { globalManager.cacheMisses.WithLabelValues(kind).Inc() }

// RecordCacheReload records a caller-requested reload.
func RecordCacheReload(kind string) { globalManager.cacheReloads.WithLabelValues(kind).Inc() }

// UpdateCachedCounts sets the current cache collection sizes.
func UpdateCachedCounts(teams, events int) {
	globalManager.cachedTeams.Set(float64(teams))
	globalManager.cachedEvents.Set(float64(events))
}

// RecordUpstreamRequest records one round trip of the given kind.
func RecordUpstreamRequest(kind string) { globalManager.upstreamRequests.WithLabelValues(kind).Inc() }

// RecordUpstreamError records one failed round trip of the given kind.
func RecordUpstreamError(kind string) { globalManager.upstreamErrors.WithLabelValues(kind).Inc() }

// ObserveUpstreamLatency records a round-trip latency in milliseconds.
func ObserveUpstreamLatency(ms float64) { globalManager.upstreamLatency.Observe(ms) }

// ObserveStoreSaveDuration records a document save duration in milliseconds.
func ObserveStoreSaveDuration(ms float64) { globalManager.storeSaveDuration.Observe(ms) }

// ObserveStoreLoadDuration records a document load duration in milliseconds.
func ObserveStoreLoadDuration(ms float64) { globalManager.storeLoadDuration.Observe(ms) }

// ObserveReplayDuration records a replay duration in milliseconds.
func ObserveReplayDuration(ms float64) { globalManager.replayDuration.Observe(ms) }

// AddReplayMatches counts matches consumed by a replay.
func AddReplayMatches(n int) { globalManager.replayMatches.Add(float64(n)) }

// SetPredictionAccuracy publishes the last replay's accuracy metric.
func SetPredictionAccuracy(v float64) { globalManager.predictionAccuracy.Set(v) }

// UpdateRegionSize sets the size gauges for the last built region.
func UpdateRegionSize(teams, events int) {
	globalManager.regionTeams.Set(float64(teams))
	globalManager.regionEvents.Set(float64(events))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}
