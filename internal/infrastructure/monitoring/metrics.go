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

	// Evaluation metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec

	// Context metrics
	BootstrapsTotal   *prometheus.CounterVec
	BootstrapDuration *prometheus.HistogramVec
	ContextsLive      prometheus.Gauge
}

// NewMetrics creates a metrics collector registered on reg. A nil reg uses
// the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modulegate_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modulegate_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		// Evaluation metrics
		EvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modulegate_evaluations_total",
				Help: "Total number of module evaluations",
			},
			[]string{"module", "action", "status"},
		),
		EvaluationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modulegate_evaluation_duration_seconds",
				Help:    "Module evaluation round-trip duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"module", "action"},
		),

		// Context metrics
		BootstrapsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modulegate_bootstraps_total",
				Help: "Total number of module context bootstraps",
			},
			[]string{"module", "status"},
		),
		BootstrapDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modulegate_bootstrap_duration_seconds",
				Help:    "Module context bootstrap duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"module"},
		),
		ContextsLive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "modulegate_contexts_live",
				Help: "Number of bootstrapped module contexts",
			},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEvaluation records one evaluation round-trip
func (m *Metrics) RecordEvaluation(module, action, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(module, action, status).Inc()
	m.EvaluationDuration.WithLabelValues(module, action).Observe(duration.Seconds())
}

// RecordBootstrap records a context bootstrap attempt
func (m *Metrics) RecordBootstrap(module, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.BootstrapsTotal.WithLabelValues(module, status).Inc()
	m.BootstrapDuration.WithLabelValues(module).Observe(duration.Seconds())
}

// SetContextsLive sets the number of live module contexts
func (m *Metrics) SetContextsLive(count int) {
	if m == nil {
		return
	}
	m.ContextsLive.Set(float64(count))
}
