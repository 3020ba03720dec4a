// Package metrics provides Prometheus metrics for the reelrank client and reference authority.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by client-side recorders.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeNetwork    = "network"
	OutcomeServer     = "server"
	OutcomeNotFound   = "not_found"
)

// Manager manages all Prometheus metrics for the reelrank binaries.
type Manager struct {
	namespace      string
	latencyBuckets []float64
	enabled        atomic.Bool
	registry       prometheus.Registerer

	// Client sync layer
	clientRequests        *prometheus.CounterVec
	clientRequestDuration *prometheus.HistogramVec
	validationRejections  *prometheus.CounterVec
	cacheWrites           *prometheus.CounterVec
	cacheLookups          *prometheus.CounterVec
	cacheInvalidations    prometheus.Counter
	cacheEntries          prometheus.Gauge

	// Reference authority
	scoreUpserts   *prometheus.CounterVec
	commentsTotal  prometheus.Counter
	itemsTotal     prometheus.Counter
	rankedUsers    prometheus.Gauge
	activeSessions prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Ranking store
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "reelrank",
		latencyBuckets: DefaultLatencyBuckets,
		registry:       prometheus.DefaultRegisterer,
	}

	m.enabled.Store(true)

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.clientRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "client_requests_total",
		Help:      "Remote authority calls issued by the client, by operation and outcome",
	}, []string{"operation", "outcome"})

	m.clientRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "client_request_duration_milliseconds",
		Help:      "Latency of remote authority calls in milliseconds",
		Buckets:   m.latencyBuckets,
	}, []string{"operation"})

	m.validationRejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "validation_rejections_total",
		Help:      "Operations rejected locally before any network call",
	}, []string{"operation"})

	m.cacheWrites = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "cache_writes_total",
		Help:      "Cache writes by result (set, applied, discarded)",
	}, []string{"result"})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache reads by result (hit, miss, stale)",
	}, []string{"result"})

	m.cacheInvalidations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "cache_invalidations_total",
		Help:      "Number of cache keys marked stale",
	})

	m.cacheEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "cache_entries",
		Help:      "Number of keys currently held in the client cache",
	})

	m.scoreUpserts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "authority_score_upserts_total",
		Help:      "Score upserts handled by the authority (insert or replace)",
	}, []string{"kind"})

	m.commentsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "authority_comments_created_total",
		Help:      "Comments created on the authority",
	})

	m.itemsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "authority_items_created_total",
		Help:      "Content items created on the authority",
	})

	m.rankedUsers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "authority_ranked_users",
		Help:      "Users currently present in the ranking",
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "authority_active_sessions",
		Help:      "Access tokens currently valid on the authority",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.latencyBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.repositoryUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "repository_update_latency_milliseconds",
		Help:      "Ranking store update latency in milliseconds",
		Buckets:   m.latencyBuckets,
	})

	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Ranking store query latency in milliseconds",
		Buckets:   m.latencyBuckets,
	})

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of operations that resulted in errors",
			Buckets:   m.latencyBuckets,
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// SetEnabled turns recording on or off for the global manager.
func SetEnabled(on bool) { globalManager.enabled.Store(on) }

// Enabled reports whether the global manager records.
func Enabled() bool { return globalManager.enabled.Load() }

// Client sync layer.

// RecordClientRequest records one remote call with its outcome and latency.
func RecordClientRequest(operation, outcome string, latencyMs float64) {
	if !Enabled() {
		return
	}
	globalManager.clientRequests.WithLabelValues(operation, outcome).Inc()
	globalManager.clientRequestDuration.WithLabelValues(operation).Observe(latencyMs)
}

// RecordValidationRejection counts an operation refused before reaching the network.
func RecordValidationRejection(operation string) {
	if !Enabled() {
		return
	}
	globalManager.validationRejections.WithLabelValues(operation).Inc()
}

// RecordCacheWrite counts a cache write; result is "set", "applied" or "discarded".
func RecordCacheWrite(result string) {
	if !Enabled() {
		return
	}
	globalManager.cacheWrites.WithLabelValues(result).Inc()
}

// RecordCacheLookup counts a cache read; result is "hit", "miss" or "stale".
func RecordCacheLookup(result string) {
	if !Enabled() {
		return
	}
	globalManager.cacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheInvalidation increments the invalidation counter.
func RecordCacheInvalidation() {
	if !Enabled() {
		return
	}
	globalManager.cacheInvalidations.Inc()
}

// UpdateCacheEntries sets the number of keys in the client cache.
func UpdateCacheEntries(count int) {
	if !Enabled() {
		return
	}
	globalManager.cacheEntries.Set(float64(count))
}

// Reference authority.

// RecordScoreUpsert counts a score upsert; replaced reports whether an entry already existed.
func RecordScoreUpsert(replaced bool) {
	if !Enabled() {
		return
	}
	kind := "insert"
	if replaced {
		kind = "replace"
	}
	globalManager.scoreUpserts.WithLabelValues(kind).Inc()
}

// RecordCommentCreated increments the comments counter.
func RecordCommentCreated() {
	if !Enabled() {
		return
	}
	globalManager.commentsTotal.Inc()
}

// RecordItemCreated increments the items counter.
func RecordItemCreated() {
	if !Enabled() {
		return
	}
	globalManager.itemsTotal.Inc()
}

// UpdateRankedUsers sets the number of users present in the ranking.
func UpdateRankedUsers(count int) {
	if !Enabled() {
		return
	}
	globalManager.rankedUsers.Set(float64(count))
}

// UpdateActiveSessions sets the number of valid access tokens.
func UpdateActiveSessions(count int) {
	if !Enabled() {
		return
	}
	globalManager.activeSessions.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !Enabled() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !Enabled() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRepositoryUpdateLatency records ranking store update latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	if !Enabled() {
		return
	}
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records ranking store query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	if !Enabled() {
		return
	}
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !Enabled() {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if !Enabled() {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !Enabled() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !Enabled() {
		return
	}
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !Enabled() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !Enabled() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !Enabled() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
