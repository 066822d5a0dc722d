// Package metrics provides Prometheus metrics for the gamekeep service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Engine metrics
	scoreSubmissions  prometheus.Counter
	scoreUnchanged    prometheus.Counter
	rankQueries       prometheus.Counter
	counterIncrements prometheus.Counter
	counterReads      prometheus.Counter
	windowResets      *prometheus.CounterVec

	// Store metrics
	storeOpLatency *prometheus.HistogramVec
	storeErrors    *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Scale gauges
	trackedScoreRecords prometheus.Gauge

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gamekeep",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
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

	m.scoreSubmissions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_submissions_total",
		Help:      "Total number of accepted score submissions",
	})

	m.scoreUnchanged = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_submissions_unchanged_total",
		Help:      "Submissions whose merged value matched the stored one and skipped the write",
	})

	m.rankQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_queries_total",
		Help:      "Total number of ranked leaderboard reads",
	})

	m.counterIncrements = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "counter_increments_total",
		Help:      "Total number of counter increments",
	})

	m.counterReads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "counter_reads_total",
		Help:      "Total number of counter value reads",
	})

	m.windowResets = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "window_resets_total",
			Help:      "Lazy reset-window clears applied, by entity kind",
		},
		[]string{"entity"},
	)

	m.storeOpLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "store",
			Name:      "operation_latency_milliseconds",
			Help:      "Document store operation latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"operation"},
	)

	m.storeErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "store",
			Name:      "operation_errors_total",
			Help:      "Document store operation failures",
		},
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "HTTP error responses by endpoint, method, and error class",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.trackedScoreRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_score_records",
		Help:      "Score records currently tracked (business scale indicator)",
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers recording on the global manager.

// RecordScoreSubmission counts an accepted score write.
func RecordScoreSubmission() {
	if globalManager != nil && globalManager.enabled {
		globalManager.scoreSubmissions.Inc()
	}
}

// RecordScoreUnchanged counts a submission that did not change the stored value.
func RecordScoreUnchanged() {
	if globalManager != nil && globalManager.enabled {
		globalManager.scoreUnchanged.Inc()
	}
}

// RecordRankQuery counts a ranked read.
func RecordRankQuery() {
	if globalManager != nil && globalManager.enabled {
		globalManager.rankQueries.Inc()
	}
}

// RecordCounterIncrement counts a counter increment.
func RecordCounterIncrement() {
	if globalManager != nil && globalManager.enabled {
		globalManager.counterIncrements.Inc()
	}
}

// RecordCounterRead counts a counter value read.
func RecordCounterRead() {
	if globalManager != nil && globalManager.enabled {
		globalManager.counterReads.Inc()
	}
}

// RecordWindowReset counts a lazy reset, labeled "leaderboard" or "counter".
func RecordWindowReset(entity string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.windowResets.WithLabelValues(entity).Inc()
	}
}

// RecordStoreOpLatency observes one store operation's latency.
func RecordStoreOpLatency(operation string, latencyMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.storeOpLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(operation string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.storeErrors.WithLabelValues(operation).Inc()
	}
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes one HTTP request's duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByEndpoint counts an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateTrackedScoreRecords sets the tracked score record gauge.
func UpdateTrackedScoreRecords(count int64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.trackedScoreRecords.Set(float64(count))
	}
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime observes an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the custom registry serving /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
