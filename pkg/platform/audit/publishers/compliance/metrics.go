package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks compliance publisher health. Persist failures here mean a
// business operation was refused because its audit trail could not be written.
type Metrics struct {
	eventsEmitted   prometheus.Counter
	persistFailures prometheus.Counter
	persistDuration prometheus.Histogram
}

// NewMetrics creates and registers the publisher metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		eventsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_compliance_audit_events_total",
			Help: "Total compliance audit events persisted.",
		}),
		persistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_compliance_audit_failures_total",
			Help: "Total compliance audit persistence failures (operations refused).",
		}),
		persistDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mintgate_compliance_audit_persist_seconds",
			Help:    "Latency of synchronous compliance audit writes.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncEventsEmitted increments the emitted counter.
func (m *Metrics) IncEventsEmitted() { m.eventsEmitted.Inc() }

// IncPersistFailures increments the failure counter.
func (m *Metrics) IncPersistFailures() { m.persistFailures.Inc() }

// ObservePersistDuration records one write latency observation.
func (m *Metrics) ObservePersistDuration(seconds float64) { m.persistDuration.Observe(seconds) }
