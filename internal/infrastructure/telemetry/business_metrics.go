package telemetry

import (
	"context"
	"errors"
	"strconv"

	"github.com/tbeauty/backend/internal/domain/inventory"
	"github.com/tbeauty/backend/internal/domain/invoice"
	"github.com/tbeauty/backend/internal/domain/order"
	"github.com/tbeauty/backend/internal/domain/payment"
	"github.com/tbeauty/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned by NewBusinessMetrics without a meter
var ErrMeterNil = errors.New("NewBusinessMetrics: meter cannot be nil")

// BusinessMetrics turns domain events into OTLP counters. It subscribes to
// the event bus like any other handler.
type BusinessMetrics struct {
	orders          metric.Int64Counter
	orderAmount     metric.Float64Counter
	payments        metric.Int64Counter
	paymentAmount   metric.Float64Counter
	adjustments     metric.Int64Counter
	lowStockAlerts  metric.Int64Counter
	invoicesCreated metric.Int64Counter
}

// NewBusinessMetrics registers the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	var err error
	if bm.orders, err = meter.Int64Counter("tbeauty_orders_total",
		metric.WithDescription("Order lifecycle events by kind"), metric.WithUnit("{orders}")); err != nil {
		return nil, err
	}
	if bm.orderAmount, err = meter.Float64Counter("tbeauty_order_amount_total",
		metric.WithDescription("Total amount of confirmed orders")); err != nil {
		return nil, err
	}
	if bm.payments, err = meter.Int64Counter("tbeauty_payments_verified_total",
		metric.WithDescription("Verified payments by method"), metric.WithUnit("{payments}")); err != nil {
		return nil, err
	}
	if bm.paymentAmount, err = meter.Float64Counter("tbeauty_payment_amount_total",
		metric.WithDescription("Total amount of verified payments")); err != nil {
		return nil, err
	}
	if bm.adjustments, err = meter.Int64Counter("tbeauty_stock_adjustments_total",
		metric.WithDescription("Audited stock adjustments"), metric.WithUnit("{adjustments}")); err != nil {
		return nil, err
	}
	if bm.lowStockAlerts, err = meter.Int64Counter("tbeauty_low_stock_alerts_total",
		metric.WithDescription("Items that dropped into low or out of stock"), metric.WithUnit("{items}")); err != nil {
		return nil, err
	}
	if bm.invoicesCreated, err = meter.Int64Counter("tbeauty_invoices_created_total",
		metric.WithDescription("Invoices created"), metric.WithUnit("{invoices}")); err != nil {
		return nil, err
	}
	return bm, nil
}

// EventTypes lists the events that feed a counter
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		order.EventTypeOrderCreated,
		order.EventTypeOrderConfirmed,
		order.EventTypeOrderCancelled,
		payment.EventTypePaymentVerified,
		inventory.EventTypeStockAdjusted,
		inventory.EventTypeLowStockDetected,
		invoice.EventTypeInvoiceCreated,
	}
}

// Handle records the event. Unknown events are ignored.
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.CreatedEvent:
		bm.orders.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event", "created"),
			attribute.String("source", string(e.Source)),
		))
	case *order.ConfirmedEvent:
		bm.orders.Add(ctx, 1, metric.WithAttributes(attribute.String("event", "confirmed")))
		bm.orderAmount.Add(ctx, e.TotalAmount.InexactFloat64())
	case *order.CancelledEvent:
		bm.orders.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event", "cancelled"),
			attribute.Bool("was_confirmed", e.WasConfirmed),
		))
	case *payment.VerifiedEvent:
		method := metric.WithAttributes(attribute.String("method", string(e.Method)))
		bm.payments.Add(ctx, 1, method)
		bm.paymentAmount.Add(ctx, e.Amount.InexactFloat64(), method)
	case *inventory.StockAdjustedEvent:
		changed := e.PreviousQuantity != e.NewQuantity
		bm.adjustments.Add(ctx, 1, metric.WithAttributes(attribute.String("changed", strconv.FormatBool(changed))))
	case *inventory.LowStockDetectedEvent:
		bm.lowStockAlerts.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(e.Status))))
	case *invoice.CreatedEvent:
		bm.invoicesCreated.Add(ctx, 1, metric.WithAttributes(attribute.Bool("derived", e.Derived)))
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
