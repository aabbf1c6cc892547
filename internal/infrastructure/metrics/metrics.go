package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EscrowMetrics holds the escrow engine collectors. All Record methods are
// safe on a nil receiver.
type EscrowMetrics struct {
	// Created contracts
	EscrowsCreatedTotal       *prometheus.CounterVec
	EscrowsCreatedAmountTotal *prometheus.CounterVec

	// Status transitions
	TransitionsTotal *prometheus.CounterVec

	// Settled money (released / refunded), minor units
	SettledAmountTotal *prometheus.CounterVec

	// Errors by operation and kind
	OperationErrorsTotal *prometheus.CounterVec

	// Latency
	OperationDuration *prometheus.HistogramVec

	// Background work
	SweepResultsTotal         *prometheus.CounterVec
	PaymentConfirmationsTotal *prometheus.CounterVec
	ListingSignalsTotal       *prometheus.CounterVec

	// Audit
	ChainVerificationsTotal *prometheus.CounterVec
}

// NewEscrowMetrics registers the collectors with reg; nil means the default
// registerer.
func NewEscrowMetrics(reg prometheus.Registerer) *EscrowMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &EscrowMetrics{
		EscrowsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrows_created_total",
				Help: "Number of escrow contracts created",
			},
			[]string{"currency"},
		),
		EscrowsCreatedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrows_created_amount_total",
				Help: "Total amount of created escrow contracts in minor units",
			},
			[]string{"currency"},
		),
		TransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_transitions_total",
				Help: "Committed escrow operations by status change",
			},
			[]string{"operation", "from", "to"},
		),
		SettledAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_settled_amount_total",
				Help: "Settled escrow amounts in minor units",
			},
			[]string{"outcome", "currency"},
		),
		OperationErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_operation_errors_total",
				Help: "Failed escrow operations by error kind",
			},
			[]string{"operation", "kind"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "escrow_operation_duration_seconds",
				Help:    "Escrow operation latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		SweepResultsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_sweep_results_total",
				Help: "Auto-release sweep outcomes per contract",
			},
			[]string{"result"},
		),
		PaymentConfirmationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_payment_confirmations_total",
				Help: "Consumed payment confirmations by outcome",
			},
			[]string{"result"},
		),
		ListingSignalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_listing_signals_total",
				Help: "Listing store notifications after settlement",
			},
			[]string{"signal", "result"},
		),
		ChainVerificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_chain_verifications_total",
				Help: "Event chain verifications by outcome",
			},
			[]string{"result"},
		),
	}
}

func (m *EscrowMetrics) RecordEscrowCreated(currency string, totalMinor int64) {
	if m == nil {
		return
	}
	m.EscrowsCreatedTotal.WithLabelValues(currency).Inc()
	m.EscrowsCreatedAmountTotal.WithLabelValues(currency).Add(float64(totalMinor))
}

func (m *EscrowMetrics) RecordTransition(operation, from, to string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(operation, from, to).Inc()
}

func (m *EscrowMetrics) RecordSettled(outcome, currency string, totalMinor int64) {
	if m == nil {
		return
	}
	m.SettledAmountTotal.WithLabelValues(outcome, currency).Add(float64(totalMinor))
}

func (m *EscrowMetrics) RecordError(operation, kind string) {
	if m == nil {
		return
	}
	m.OperationErrorsTotal.WithLabelValues(operation, kind).Inc()
}

func (m *EscrowMetrics) ObserveDuration(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *EscrowMetrics) RecordSweep(result string) {
	if m == nil {
		return
	}
	m.SweepResultsTotal.WithLabelValues(result).Inc()
}

func (m *EscrowMetrics) RecordPaymentConfirmation(result string) {
	if m == nil {
		return
	}
	m.PaymentConfirmationsTotal.WithLabelValues(result).Inc()
}

func (m *EscrowMetrics) RecordListingSignal(signal, result string) {
	if m == nil {
		return
	}
	m.ListingSignalsTotal.WithLabelValues(signal, result).Inc()
}

func (m *EscrowMetrics) RecordVerification(valid bool) {
	if m == nil {
		return
	}
	result := "valid"
	if !valid {
		result = "broken"
	}
	m.ChainVerificationsTotal.WithLabelValues(result).Inc()
}
