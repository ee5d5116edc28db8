package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Shop metric instruments
const (
	metricIntakes           = "swas.intakes"
	metricIntakePairs       = "swas.intake.pairs"
	metricIntakeAmount      = "swas.intake.amount"
	metricPayments          = "swas.payments"
	metricPaymentAmount     = "swas.payment.amount"
	metricStatusTransitions = "swas.line_item.status_transitions"
)

// OrderMetrics records intake, payment and pipeline counters. It implements
// the order service's Metrics port.
type OrderMetrics struct {
	intakes       metric.Int64Counter
	pairs         metric.Int64Counter
	intakeAmount  metric.Float64Histogram
	payments      metric.Int64Counter
	paymentAmount metric.Float64Histogram
	transitions   metric.Int64Counter
}

// NewOrderMetrics creates the instruments on meter
func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	m := &OrderMetrics{}
	var err error
	if m.intakes, err = meter.Int64Counter(metricIntakes,
		metric.WithDescription("Service requests taken in"), metric.WithUnit("{transaction}")); err != nil {
		return nil, wrapInstrument(metricIntakes, err)
	}
	if m.pairs, err = meter.Int64Counter(metricIntakePairs,
		metric.WithDescription("Pairs of shoes taken in"), metric.WithUnit("{pair}")); err != nil {
		return nil, wrapInstrument(metricIntakePairs, err)
	}
	if m.intakeAmount, err = meter.Float64Histogram(metricIntakeAmount,
		metric.WithDescription("Transaction total at intake"), metric.WithUnit("PHP")); err != nil {
		return nil, wrapInstrument(metricIntakeAmount, err)
	}
	if m.payments, err = meter.Int64Counter(metricPayments,
		metric.WithDescription("Payments recorded"), metric.WithUnit("{payment}")); err != nil {
		return nil, wrapInstrument(metricPayments, err)
	}
	if m.paymentAmount, err = meter.Float64Histogram(metricPaymentAmount,
		metric.WithDescription("Amount applied per payment"), metric.WithUnit("PHP")); err != nil {
		return nil, wrapInstrument(metricPaymentAmount, err)
	}
	if m.transitions, err = meter.Int64Counter(metricStatusTransitions,
		metric.WithDescription("Line item status changes"), metric.WithUnit("{transition}")); err != nil {
		return nil, wrapInstrument(metricStatusTransitions, err)
	}
	return m, nil
}

func wrapInstrument(name string, err error) error {
	return fmt.Errorf("failed to create %s instrument: %w", name, err)
}

// RecordIntake counts a new transaction
func (m *OrderMetrics) RecordIntake(ctx context.Context, branchID string, pairs int, amount float64) {
	attrs := metric.WithAttributes(attribute.String("branch_id", branchID))
	m.intakes.Add(ctx, 1, attrs)
	m.pairs.Add(ctx, int64(pairs), attrs)
	m.intakeAmount.Record(ctx, amount, attrs)
}

// RecordPayment counts a payment by mode
func (m *OrderMetrics) RecordPayment(ctx context.Context, branchID, mode string, amount float64) {
	attrs := metric.WithAttributes(
		attribute.String("branch_id", branchID),
		attribute.String("payment_mode", mode),
	)
	m.payments.Add(ctx, 1, attrs)
	m.paymentAmount.Record(ctx, amount, attrs)
}

// RecordStatusTransition counts a line item moving between statuses
func (m *OrderMetrics) RecordStatusTransition(ctx context.Context, branchID, from, to string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("branch_id", branchID),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}
