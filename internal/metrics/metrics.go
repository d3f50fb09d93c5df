package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordFetch(service, kind, outcome string, duration time.Duration)
	RecordSyncRun(status string, duration time.Duration)
	RecordStatusChange(service, from, to string)
	RecordNotification(channel, status string)
	RecordCacheLookup(hit bool)
	SetDBConnectionsActive(count float64)
	RecordDBQuery(operation, status string)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
}
func (m *NoOpMetrics) RecordFetch(service, kind, outcome string, duration time.Duration) {}
func (m *NoOpMetrics) RecordSyncRun(status string, duration time.Duration)               {}
func (m *NoOpMetrics) RecordStatusChange(service, from, to string)                       {}
func (m *NoOpMetrics) RecordNotification(channel, status string)                         {}
func (m *NoOpMetrics) RecordCacheLookup(hit bool)                                        {}
func (m *NoOpMetrics) SetDBConnectionsActive(count float64)                              {}
func (m *NoOpMetrics) RecordDBQuery(operation, status string)                            {}
func (m *NoOpMetrics) Handler() http.Handler                                             { return http.NotFoundHandler() }

// PrometheusMetrics records into a dedicated prometheus registry
type PrometheusMetrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	syncRuns      *prometheus.CounterVec
	syncDuration  prometheus.Histogram
	changes       *prometheus.CounterVec
	notifications *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	dbConnections prometheus.Gauge
	dbQueries     *prometheus.CounterVec
}

// NewPrometheus registers the collectors on registry
func NewPrometheus(registry *prometheus.Registry) *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statusaggregator_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statusaggregator_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statusaggregator_fetches_total",
			Help: "Status source fetches by service and outcome.",
		}, []string{"service", "kind", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statusaggregator_fetch_duration_seconds",
			Help:    "Status source fetch and parse duration in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statusaggregator_sync_runs_total",
			Help: "Sync job runs by result.",
		}, []string{"status"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statusaggregator_sync_duration_seconds",
			Help:    "Sync job duration in seconds.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statusaggregator_status_changes_total",
			Help: "Detected status transitions.",
		}, []string{"service", "from", "to"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statusaggregator_notifications_total",
			Help: "Notification deliveries by channel and result.",
		}, []string{"channel", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statusaggregator_cache_lookups_total",
			Help: "Snapshot cache lookups by result.",
		}, []string{"result"}),
		dbConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "statusaggregator_db_connections_active",
			Help: "Acquired database connections.",
		}),
		dbQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statusaggregator_db_queries_total",
			Help: "Database operations by type and result.",
		}, []string{"operation", "status"}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.fetches,
		m.fetchDuration,
		m.syncRuns,
		m.syncDuration,
		m.changes,
		m.notifications,
		m.cacheLookups,
		m.dbConnections,
		m.dbQueries,
	)
	return m
}

func (m *PrometheusMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordFetch(service, kind, outcome string, duration time.Duration) {
	m.fetches.WithLabelValues(service, kind, outcome).Inc()
	m.fetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordSyncRun(status string, duration time.Duration) {
	m.syncRuns.WithLabelValues(status).Inc()
	m.syncDuration.Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordStatusChange(service, from, to string) {
	m.changes.WithLabelValues(service, from, to).Inc()
}

func (m *PrometheusMetrics) RecordNotification(channel, status string) {
	m.notifications.WithLabelValues(channel, status).Inc()
}

func (m *PrometheusMetrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) SetDBConnectionsActive(count float64) {
	m.dbConnections.Set(count)
}

func (m *PrometheusMetrics) RecordDBQuery(operation, status string) {
	m.dbQueries.WithLabelValues(operation, status).Inc()
}

func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Global metrics instance
var (
	mu            sync.RWMutex
	globalMetrics Metrics = &NoOpMetrics{}
)

// Init installs prometheus-backed metrics as the global instance
func Init() {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	Set(NewPrometheus(registry))
}

// Set replaces the global metrics instance
func Set(m Metrics) {
	mu.Lock()
	defer mu.Unlock()
	globalMetrics = m
}

func current() Metrics {
	mu.RLock()
	defer mu.RUnlock()
	return globalMetrics
}

// Handler returns the metrics handler
func Handler() http.Handler {
	return current().Handler()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	current().RecordHTTPRequest(method, endpoint, statusCode, duration)
}

// RecordFetch records one source fetch for a service
func RecordFetch(service, kind, outcome string, duration time.Duration) {
	current().RecordFetch(service, kind, outcome, duration)
}

// RecordSyncRun records a completed sync run
func RecordSyncRun(status string, duration time.Duration) {
	current().RecordSyncRun(status, duration)
}

// RecordStatusChange records a detected transition
func RecordStatusChange(service, from, to string) {
	current().RecordStatusChange(service, from, to)
}

// RecordNotification records a notification attempt
func RecordNotification(channel, status string) {
	current().RecordNotification(channel, status)
}

// RecordCacheLookup records a snapshot cache hit or miss
func RecordCacheLookup(hit bool) {
	current().RecordCacheLookup(hit)
}

// SetDBConnectionsActive sets the number of active database connections
func SetDBConnectionsActive(count float64) {
	current().SetDBConnectionsActive(count)
}

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, status string) {
	current().RecordDBQuery(operation, status)
}
