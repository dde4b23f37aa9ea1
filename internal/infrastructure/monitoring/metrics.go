package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Remote loading metrics
	LoadsTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	// Mount lifecycle metrics
	MountsTotal   *prometheus.CounterVec
	UnmountsTotal *prometheus.CounterVec
	ActiveMounts  prometheus.Gauge

	// Registry metrics
	RegistryRemotes prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "host_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "host_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		LoadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "host_remote_loads_total",
				Help: "Total number of remote load attempts",
			},
			[]string{"scope", "status"},
		),
		FetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "host_remote_fetch_duration_seconds",
				Help:    "Remote entry fetch duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"scope"},
		),

		MountsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "host_remote_mounts_total",
				Help: "Total number of remote mount attempts",
			},
			[]string{"scope", "status"},
		),
		UnmountsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "host_remote_unmounts_total",
				Help: "Total number of remote unmount attempts",
			},
			[]string{"scope", "status"},
		),
		ActiveMounts: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "host_remote_mounts_active",
				Help: "Number of remotes currently mounted",
			},
		),

		RegistryRemotes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "host_registry_remotes",
				Help: "Number of remotes in the registry",
			},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "host_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "host_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "host_uptime_seconds",
				Help: "Host uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordLoad records a remote load attempt
func (m *Metrics) RecordLoad(scope, status string, fetchDuration time.Duration) {
	m.LoadsTotal.WithLabelValues(scope, status).Inc()
	if status == "ok" {
		m.FetchDuration.WithLabelValues(scope).Observe(fetchDuration.Seconds())
	}
}

// RecordMount records a mount attempt
func (m *Metrics) RecordMount(scope, status string) {
	m.MountsTotal.WithLabelValues(scope, status).Inc()
}

// RecordUnmount records an unmount attempt
func (m *Metrics) RecordUnmount(scope, status string) {
	m.UnmountsTotal.WithLabelValues(scope, status).Inc()
}

// SetActiveMounts updates the active mounts gauge
func (m *Metrics) SetActiveMounts(n int) {
	m.ActiveMounts.Set(float64(n))
}

// SetRegistrySize updates the registry size gauge
func (m *Metrics) SetRegistrySize(n int) {
	m.RegistryRemotes.Set(float64(n))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}
