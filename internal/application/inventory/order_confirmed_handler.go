package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/tbeauty/backend/internal/domain/order"
	"github.com/tbeauty/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// stockDecrementer is the part of InventoryService the handler needs
type stockDecrementer interface {
	DecrementProduct(ctx context.Context, sess shared.Session, productID int64, qty int, reason string) (*AdjustmentResponse, error)
}

// OrderConfirmedHandler decrements stock for every line of a confirmed
// order. It is only subscribed when inventory.decrement_on_confirm is set.
type OrderConfirmedHandler struct {
	stock  stockDecrementer
	logger *zap.Logger
}

// NewOrderConfirmedHandler creates a new OrderConfirmedHandler
func NewOrderConfirmedHandler(stock stockDecrementer, logger *zap.Logger) *OrderConfirmedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderConfirmedHandler{stock: stock, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderConfirmedHandler) EventTypes() []string {
	return []string{order.EventTypeOrderConfirmed}
}

// Handle decrements each line through the audited adjustment path. Lines
// whose product has no stock row are skipped; every other failure is
// collected and returned after all lines were attempted.
func (h *OrderConfirmedHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	confirmed, ok := evt.(*order.ConfirmedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderConfirmed, evt.EventType())
	}

	sess := shared.Session{ActorID: confirmed.ActorID(), ActorName: confirmed.ActorID()}
	if sess.ActorID == "" {
		sess = shared.SystemSession("")
	}
	reason := fmt.Sprintf("order %s confirmed", confirmed.OrderNumber)

	var errs []error
	for _, item := range confirmed.Items {
		adj, err := h.stock.DecrementProduct(ctx, sess, item.ProductID, item.Quantity, reason)
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("no stock row for ordered product",
				zap.String("order_number", confirmed.OrderNumber),
				zap.Int64("product_id", item.ProductID),
			)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("product %d: %w", item.ProductID, err))
			continue
		}
		h.logger.Info("stock decremented for confirmed order",
			zap.String("order_number", confirmed.OrderNumber),
			zap.String("sku", adj.SKU),
			zap.Int("new_quantity", adj.NewQuantity),
		)
	}
	return errors.Join(errs...)
}

var _ shared.EventHandler = (*OrderConfirmedHandler)(nil)
