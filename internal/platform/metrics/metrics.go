// Package metrics holds service-wide Prometheus metrics. Module-local
// metrics (hook decisions, audit persistence) live next to their modules.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds cross-cutting Prometheus metrics for the service.
type Metrics struct {
	InstrumentsInitialized prometheus.Counter
	TokensIssued           prometheus.Counter
	TokensRedeemed         prometheus.Counter
	IssuanceRejected       *prometheus.CounterVec
}

// New creates and registers all service-level Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		InstrumentsInitialized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_instruments_initialized_total",
			Help: "Total number of instrument configurations created.",
		}),
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_tokens_issued_total",
			Help: "Total successful issuance operations.",
		}),
		TokensRedeemed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_tokens_redeemed_total",
			Help: "Total successful redemption operations.",
		}),
		IssuanceRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_issuance_rejected_total",
			Help: "Issuance operations rejected, by error code.",
		}, []string{"code"}),
	}
}

// IncInstrumentsInitialized increments the instrument counter.
func (m *Metrics) IncInstrumentsInitialized() { m.InstrumentsInitialized.Inc() }

// IncTokensIssued increments the issuance counter.
func (m *Metrics) IncTokensIssued() { m.TokensIssued.Inc() }

// IncTokensRedeemed increments the redemption counter.
func (m *Metrics) IncTokensRedeemed() { m.TokensRedeemed.Inc() }

// IncIssuanceRejected increments the rejection counter for a given error code.
func (m *Metrics) IncIssuanceRejected(code string) {
	m.IssuanceRejected.WithLabelValues(code).Inc()
}
