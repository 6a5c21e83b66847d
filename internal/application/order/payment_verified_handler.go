package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/payment"
	"github.com/tbeauty/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type paymentApplier interface {
	ApplyPayment(ctx context.Context, sess shared.Session, id uuid.UUID, amount decimal.Decimal, reference string) (*OrderResponse, error)
}

// PaymentVerifiedHandler applies the amount of a verified payment to its
// order. A VerifiedEvent is raised once per payment, but the handler must
// still be wrapped in an idempotent handler since delivery can repeat.
type PaymentVerifiedHandler struct {
	orders paymentApplier
	logger *zap.Logger
}

// NewPaymentVerifiedHandler creates a new PaymentVerifiedHandler
func NewPaymentVerifiedHandler(orders paymentApplier, logger *zap.Logger) *PaymentVerifiedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentVerifiedHandler{orders: orders, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentVerifiedHandler) EventTypes() []string {
	return []string{payment.EventTypePaymentVerified}
}

// Handle handles the PaymentVerified event
func (h *PaymentVerifiedHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	verified, ok := evt.(*payment.VerifiedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			payment.EventTypePaymentVerified, evt.EventType())
	}
	if verified.OrderID == nil {
		h.logger.Debug("verified payment has no order",
			zap.String("payment_reference", verified.Reference))
		return nil
	}

	sess := shared.Session{ActorID: verified.ActorID(), ActorName: verified.ActorID()}
	if sess.ActorID == "" {
		sess = shared.SystemSession("")
	}

	resp, err := h.orders.ApplyPayment(ctx, sess, *verified.OrderID, verified.Amount, verified.Reference)
	if err != nil {
		return fmt.Errorf("apply payment %s to order %s: %w", verified.Reference, verified.OrderID, err)
	}

	h.logger.Info("payment applied to order",
		zap.String("payment_reference", verified.Reference),
		zap.String("order_number", resp.OrderNumber),
		zap.String("payment_status", resp.PaymentStatus.String()),
	)
	return nil
}

var _ shared.EventHandler = (*PaymentVerifiedHandler)(nil)
