// Package metrics provides Prometheus metrics for the bestxi lineup service.
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
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Selection metrics
	selectionsTotal    *prometheus.CounterVec
	selectionLatency   prometheus.Histogram
	substitutionsTotal *prometheus.CounterVec
	positionCoercions  prometheus.Counter
	compositesComputed prometheus.Counter
	illegalFormations  prometheus.Counter

	// Input quality metrics
	statWrites       prometheus.Counter
	statOutOfRange   prometheus.Counter
	weightWrites     prometheus.Counter
	weightRejections prometheus.Counter

	// Store gauges
	totalTeams      prometheus.Gauge
	totalPlayers    prometheus.Gauge
	totalStatValues prometheus.Gauge

	// Repository latency
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

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
		namespace:        "bestxi",
		subsystem:        "lineup",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	fast := []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50}

	m.selectionsTotal = m.counterVec("selections_total", "Total number of lineup selections by formation legality", "legal")
	m.selectionLatency = m.histogram("selection_latency_milliseconds", "Normalize, score and select latency in milliseconds", fast)
	m.substitutionsTotal = m.counterVec("substitutions_total", "Bucket slots filled from another position", "tier")
	m.positionCoercions = m.counter("position_coercions_total", "Candidates with unknown positions treated as MID")
	m.compositesComputed = m.counter("composites_computed_total", "Composite scores computed")
	m.illegalFormations = m.counter("illegal_formations_total", "Selections rejected because the formation was not legal")

	m.statWrites = m.counter("stat_writes_total", "Stat values recorded")
	m.statOutOfRange = m.counter("stat_out_of_range_total", "Stat values outside their advisory definition range")
	m.weightWrites = m.counter("weight_writes_total", "Weight overrides stored")
	m.weightRejections = m.counter("weight_rejections_total", "Weight overrides rejected as out of range")

	m.totalTeams = m.gauge("total_teams", "Teams with at least one rostered player")
	m.totalPlayers = m.gauge("total_players", "Rostered players across all teams")
	m.totalStatValues = m.gauge("total_stat_values", "Stored stat values")

	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Store write latency in milliseconds", fast)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Store read latency in milliseconds", fast)

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of failed operations in milliseconds", m.histogramBuckets, "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordSelection counts a completed selection and its latency.
func RecordSelection(legal bool, latencyMs float64) {
	label := "false"
	if legal {
		label = "true"
	}
	globalManager.selectionsTotal.WithLabelValues(label).Inc()
	globalManager.selectionLatency.Observe(latencyMs)
}

// RecordSubstitution counts a fallback fill of the given tier.
func RecordSubstitution(tier string) {
	globalManager.substitutionsTotal.WithLabelValues(tier).Inc()
}

// RecordPositionCoercion counts a candidate coerced to MID.
func RecordPositionCoercion() {
	globalManager.positionCoercions.Inc()
}

// RecordCompositesComputed adds n computed composites.
func RecordCompositesComputed(n int) {
	globalManager.compositesComputed.Add(float64(n))
}

// RecordIllegalFormation counts a selection refused for an illegal formation.
func RecordIllegalFormation() {
	globalManager.illegalFormations.Inc()
}

// RecordStatWrite counts a recorded stat value.
func RecordStatWrite(outOfRange bool) {
	globalManager.statWrites.Inc()
	if outOfRange {
		globalManager.statOutOfRange.Inc()
	}
}

// RecordWeightWrite counts a stored weight override.
func RecordWeightWrite() {
	globalManager.weightWrites.Inc()
}

// RecordWeightRejection counts a rejected weight override.
func RecordWeightRejection() {
	globalManager.weightRejections.Inc()
}

// UpdateTotalTeams sets the team gauge.
func UpdateTotalTeams(count int) {
	globalManager.totalTeams.Set(float64(count))
}

// UpdateTotalPlayers sets the player gauge.
func UpdateTotalPlayers(count int) {
	globalManager.totalPlayers.Set(float64(count))
}

// UpdateTotalStatValues sets the stat value gauge.
func UpdateTotalStatValues(count int) {
	globalManager.totalStatValues.Set(float64(count))
}

// RecordRepositoryUpdateLatency records store write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records store read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error for an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
