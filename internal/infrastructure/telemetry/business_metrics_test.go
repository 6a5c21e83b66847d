package telemetry

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbeauty/backend/internal/domain/inventory"
	"github.com/tbeauty/backend/internal/domain/invoice"
	"github.com/tbeauty/backend/internal/domain/order"
	"github.com/tbeauty/backend/internal/domain/payment"
	"github.com/tbeauty/backend/internal/domain/shared"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]float64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := make(map[string]float64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					totals[m.Name] += float64(dp.Value)
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	return totals
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := NewBusinessMetrics(nil)
	assert.Nil(t, bm)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestBusinessMetrics_Handle(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	bm, err := NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	events := []shared.DomainEvent{
		&order.CreatedEvent{Source: order.SourceInstagram},
		&order.ConfirmedEvent{TotalAmount: decimal.NewFromInt(24)},
		&order.CancelledEvent{WasConfirmed: true},
		&payment.VerifiedEvent{Amount: decimal.RequireFromString("12.50"), Method: payment.MethodCash},
		&payment.VerifiedEvent{Amount: decimal.RequireFromString("7.50"), Method: payment.MethodCash},
		&inventory.StockAdjustedEvent{PreviousQuantity: 5, NewQuantity: 3},
		&inventory.StockAdjustedEvent{PreviousQuantity: 3, NewQuantity: 3},
		&inventory.LowStockDetectedEvent{Status: inventory.StockStatusLowStock},
		&invoice.CreatedEvent{Derived: true},
	}
	for _, e := range events {
		require.NoError(t, bm.Handle(ctx, e))
	}

	totals := collect(t, reader)
	assert.Equal(t, 3.0, totals["tbeauty_orders_total"])
	assert.Equal(t, 24.0, totals["tbeauty_order_amount_total"])
	assert.Equal(t, 2.0, totals["tbeauty_payments_verified_total"])
	assert.InDelta(t, 20.0, totals["tbeauty_payment_amount_total"], 1e-9)
	assert.Equal(t, 2.0, totals["tbeauty_stock_adjustments_total"])
	assert.Equal(t, 1.0, totals["tbeauty_low_stock_alerts_total"])
	assert.Equal(t, 1.0, totals["tbeauty_invoices_created_total"])
}

func TestBusinessMetrics_EventTypes(t *testing.T) {
	bm, err := NewBusinessMetrics(sdkmetric.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	assert.Contains(t, bm.EventTypes(), payment.EventTypePaymentVerified)
	assert.Contains(t, bm.EventTypes(), inventory.EventTypeLowStockDetected)
}
