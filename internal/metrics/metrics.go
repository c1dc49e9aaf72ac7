// Package metrics defines the Prometheus collectors of the diagnostic service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	gatherer     prometheus.Gatherer
	submissions  *prometheus.CounterVec
	sinkFailures *prometheus.CounterVec
	inputErrors  *prometheus.CounterVec
	scores       *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagnostic_submissions_total",
				Help: "Total number of evaluated submissions by catalog and tier",
			},
			[]string{"catalog", "tier"},
		),
		sinkFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagnostic_sink_failures_total",
				Help: "Total number of failed submission row appends",
			},
			[]string{"driver"},
		),
		inputErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagnostic_input_errors_total",
				Help: "Total number of rejected submissions by reason",
			},
			[]string{"reason"},
		),
		scores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "diagnostic_score",
				Help:    "Distribution of total scores",
				Buckets: prometheus.LinearBuckets(0, 10, 10),
			},
			[]string{"catalog"},
		),
	}
}

// ObserveSubmission records a successful submission.
func (m *Metrics) ObserveSubmission(catalog, tier string, score int) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(catalog, tier).Inc()
	m.scores.WithLabelValues(catalog).Observe(float64(score))
}

// SinkFailed records a failed append on driver.
func (m *Metrics) SinkFailed(driver string) {
	if m == nil {
		return
	}
	m.sinkFailures.WithLabelValues(driver).Inc()
}

// InputRejected records a submission rejected before evaluation completed.
func (m *Metrics) InputRejected(reason string) {
	if m == nil {
		return
	}
	m.inputErrors.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
