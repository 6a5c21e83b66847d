package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbeauty/backend/internal/domain/order"
	"github.com/tbeauty/backend/internal/domain/payment"
	"github.com/tbeauty/backend/internal/domain/shared"
)

func verifiedEvent(t *testing.T, orderID *uuid.UUID, amount string) *payment.VerifiedEvent {
	t.Helper()
	p, err := payment.NewPayment(payment.CreateParams{
		Reference:  "PAY-2026-00007",
		OrderID:    orderID,
		CustomerID: 1,
		Amount:     decimal.RequireFromString(amount),
		Method:     payment.MethodBankTransfer,
	})
	require.NoError(t, err)
	return payment.NewVerifiedEvent(p, "ada")
}

func TestPaymentVerifiedHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("applies the amount to the order", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t, lipstick(2, "15"))
		h := NewPaymentVerifiedHandler(f.service, nil)

		require.NoError(t, h.Handle(ctx, verifiedEvent(t, &created.ID, "10")))

		stored, err := f.service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, order.PaymentStatusPartial, stored.PaymentStatus)
		assert.Equal(t, "10", stored.AmountPaid.String())
		assert.Equal(t, "20", stored.OutstandingAmount.String())
	})

	t.Run("payments without order are ignored", func(t *testing.T) {
		h := NewPaymentVerifiedHandler(nil, nil)
		assert.NoError(t, h.Handle(ctx, verifiedEvent(t, nil, "10")))
	})

	t.Run("cancelled orders reject the payment", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t, lipstick(1, "15"))
		_, err := f.service.Cancel(ctx, testSession, created.ID, CancelOrderRequest{Reason: "out of shade"})
		require.NoError(t, err)
		h := NewPaymentVerifiedHandler(f.service, nil)

		err = h.Handle(ctx, verifiedEvent(t, &created.ID, "15"))
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("rejects other events", func(t *testing.T) {
		h := NewPaymentVerifiedHandler(nil, nil)
		evt := &order.CreatedEvent{BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderCreated, order.AggregateTypeOrder, uuid.New(), "")}

		assert.Error(t, h.Handle(ctx, evt))
		assert.Equal(t, []string{payment.EventTypePaymentVerified}, h.EventTypes())
	})
}
