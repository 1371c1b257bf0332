package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slaworks/sla-service/internal/compliance"
)

// Metrics holds the Prometheus collectors exported by the service.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	slaItems        *prometheus.GaugeVec
	slaRates        *prometheus.GaugeVec
	breaches        *prometheus.CounterVec
	sweepDuration   prometheus.Histogram
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status_code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "path"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP requests answered with an error envelope",
		}, []string{"method", "path", "code"}),
		slaItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sla_items",
			Help: "Tracked items per owner, window and status at the last sweep",
		}, []string{"owner", "window", "status"}),
		slaRates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sla_rate_percent",
			Help: "On-time percentage and compliance rate at the last sweep",
		}, []string{"owner", "window", "rate"}),
		breaches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sla_breaches_total",
			Help: "Items observed crossing into overdue",
		}, []string{"owner"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sla_sweep_duration_seconds",
			Help:    "Duration of a compliance sweep",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}
	m.registry.MustRegister(
		m.requestCount,
		m.requestDuration,
		m.errorCount,
		m.slaItems,
		m.slaRates,
		m.breaches,
		m.sweepDuration,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(method, path, code).Inc()
}

// RecordCompliance publishes the status counts and rates of one aggregate.
func (m *Metrics) RecordCompliance(owner string, window compliance.WindowKind, metrics compliance.Metrics) {
	if m == nil {
		return
	}
	for _, status := range compliance.Statuses {
		m.slaItems.WithLabelValues(owner, string(window), string(status)).Set(float64(metrics.Count(status)))
	}
	m.slaItems.WithLabelValues(owner, string(window), "untracked").Set(float64(metrics.Untracked))
	m.slaRates.WithLabelValues(owner, string(window), "on_time").Set(metrics.OnTimePercentage)
	m.slaRates.WithLabelValues(owner, string(window), "compliance").Set(metrics.ComplianceRate)
}

// RecordBreach counts an item newly observed as overdue.
func (m *Metrics) RecordBreach(owner string) {
	if m == nil {
		return
	}
	m.breaches.WithLabelValues(owner).Inc()
}

// ObserveSweep records the duration of a sweep.
func (m *Metrics) ObserveSweep(duration time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(duration.Seconds())
}
