// Package metrics exposes Prometheus metrics for VaR runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "varcalc"

// Recorder implements risk.MetricsRecorder on its own registry
type Recorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration prometheus.Histogram
	lastVaR  *prometheus.GaugeVec
}

// NewRecorder creates a recorder with Go and process collectors attached
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "VaR calculations by outcome",
			},
			[]string{"status"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Failed VaR calculations by error kind",
			},
			[]string{"kind"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of a VaR calculation including price retrieval",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		lastVaR: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_var",
				Help:      "Most recent VaR estimate in currency units",
			},
			[]string{"method"},
		),
	}
}

// RunSucceeded records a completed calculation
func (r *Recorder) RunSucceeded(duration time.Duration, estimates risk.Estimates) {
	r.runs.WithLabelValues("success").Inc()
	r.duration.Observe(duration.Seconds())
	r.lastVaR.WithLabelValues(string(risk.MethodHistorical)).Set(estimates.Historical.Value)
	r.lastVaR.WithLabelValues(string(risk.MethodParametric)).Set(estimates.Parametric.Value)
}

// RunFailed records a failed calculation
func (r *Recorder) RunFailed(kind string, duration time.Duration) {
	r.runs.WithLabelValues("error").Inc()
	r.errors.WithLabelValues(kind).Inc()
	r.duration.Observe(duration.Seconds())
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
