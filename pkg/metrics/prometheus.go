// Package metrics provides Prometheus metrics for the waypoint routing service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcomes.
const (
	OutcomeMatched  = "matched"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Manager owns the service's Prometheus collectors.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// HTTP performance
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Routing
	resolutions         *prometheus.CounterVec
	appendSlashRedirect prometheus.Counter
	rateLimited         prometheus.Counter
	routeCount          prometheus.Gauge

	// Errors
	errorRateByType *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "waypoint",
		subsystem:        "router",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by view, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"view", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"view", "method", "status_code"})

	m.resolutions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "resolutions_total",
		Help:        "Route table lookups by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.appendSlashRedirect = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "append_slash_redirects_total",
		Help:        "Requests redirected to their slash-terminated path",
		ConstLabels: m.constLabels,
	})

	m.rateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rate_limited_total",
		Help:        "Requests rejected by the rate limiter",
		ConstLabels: m.constLabels,
	})

	m.routeCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "routes",
		Help:        "Number of entries in the route table, nested entries included",
		ConstLabels: m.constLabels,
	})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_type_total",
		Help:        "Errors by type and severity",
		ConstLabels: m.constLabels,
	}, []string{"error_type", "severity"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Allocated heap memory in bytes",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
}

// RecordHTTPRequest counts a served request.
func (m *Manager) RecordHTTPRequest(view, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(view, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(view, method, statusCode).Observe(durationMs)
}

// RecordResolution counts a route table lookup.
func (m *Manager) RecordResolution(outcome string) {
	m.resolutions.WithLabelValues(outcome).Inc()
}

// RecordAppendSlashRedirect counts an append-slash redirect.
func (m *Manager) RecordAppendSlashRedirect() { m.appendSlashRedirect.Inc() }

// RecordRateLimited counts a rejected request.
func (m *Manager) RecordRateLimited() { m.rateLimited.Inc() }

// UpdateRouteCount sets the route table size.
func (m *Manager) UpdateRouteCount(n int) { m.routeCount.Set(float64(n)) }

// RecordErrorByType records an error with type and severity labels.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// Package-level recorders backed by the global manager.

// RecordHTTPRequest records a request on the global manager.
func RecordHTTPRequest(view, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(view, method, statusCode, durationMs)
}

// RecordResolution records a lookup outcome on the global manager.
func RecordResolution(outcome string) { globalManager.RecordResolution(outcome) }

// RecordAppendSlashRedirect records a redirect on the global manager.
func RecordAppendSlashRedirect() { globalManager.RecordAppendSlashRedirect() }

// RecordRateLimited records a rejected request on the global manager.
func RecordRateLimited() { globalManager.RecordRateLimited() }

// UpdateRouteCount sets the route gauge on the global manager.
func UpdateRouteCount(n int) { globalManager.UpdateRouteCount(n) }

// RecordErrorByType records an error on the global manager.
func RecordErrorByType(errorType, severity string) {
	globalManager.RecordErrorByType(errorType, severity)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
