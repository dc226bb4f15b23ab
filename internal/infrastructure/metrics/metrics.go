// Package metrics provides Prometheus metrics for the dashboard service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Outbound calls
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec

	// Inbound API
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Degraded fragments
	ChartRenders *prometheus.CounterVec
	Summaries    *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "coin_dashboard"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of outbound API requests by service, endpoint and status",
		}, []string{"service", "endpoint", "status"}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Outbound API request latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30},
		}, []string{"service", "endpoint"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of handled HTTP requests by route and code",
		}, []string{"route", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		ChartRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "renders_total",
			Help:      "Chart fragments produced by outcome",
		}, []string{"outcome"}),
		Summaries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "summary",
			Name:      "generations_total",
			Help:      "Summary generations by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveUpstream records one outbound call. status 0 means a transport failure.
func (m *Metrics) ObserveUpstream(service, endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.UpstreamRequests.WithLabelValues(service, endpoint, code).Inc()
	m.UpstreamLatency.WithLabelValues(service, endpoint).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) ChartOutcome(outcome string) {
	if m == nil {
		return
	}
	m.ChartRenders.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SummaryOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Summaries.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
