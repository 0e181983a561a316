// Package metrics tracks transfer validation outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the hook decision metrics.
type Metrics struct {
	decisions *prometheus.CounterVec
	duration  prometheus.Histogram
}

// New creates and registers the hook metrics.
func New() *Metrics {
	return &Metrics{
		decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_hook_decisions_total",
			Help: "Transfer validation decisions, by outcome.",
		}, []string{"outcome"}),
		duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mintgate_hook_validation_seconds",
			Help:    "Latency of transfer validation.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordDecision counts one validation outcome: "accepted" or the rejection
// error code.
func (m *Metrics) RecordDecision(outcome string) {
	m.decisions.WithLabelValues(outcome).Inc()
}

// ObserveDuration records one validation latency.
func (m *Metrics) ObserveDuration(seconds float64) {
	m.duration.Observe(seconds)
}
