package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated        = "OrderCreated"
	EventTypeOrderConfirmed      = "OrderConfirmed"
	EventTypeOrderCancelled      = "OrderCancelled"
	EventTypeOrderStatusChanged  = "OrderStatusChanged"
	EventTypeOrderPaymentApplied = "OrderPaymentApplied"
)

// CreatedEvent is raised when a new order is created
type CreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  int64           `json:"customer_id"`
	Source      Source          `json:"order_source"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(o *Order, actor string) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID, actor),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Source:          o.Source,
		TotalAmount:     o.TotalAmount(),
	}
}

// ItemInfo represents item information carried by events
type ItemInfo struct {
	ItemID      uuid.UUID `json:"item_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
}

// ConfirmedEvent is raised when an order is confirmed.
// Stock decrement hooks subscribe to it.
type ConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  int64           `json:"customer_id"`
	Items       []ItemInfo      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewConfirmedEvent creates a new ConfirmedEvent
func NewConfirmedEvent(o *Order, actor string) *ConfirmedEvent {
	items := make([]ItemInfo, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemInfo{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		}
	}
	return &ConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, AggregateTypeOrder, o.ID, actor),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Items:           items,
		TotalAmount:     o.TotalAmount(),
	}
}

// CancelledEvent is raised when an order is cancelled
type CancelledEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	Reason       string    `json:"reason"`
	WasConfirmed bool      `json:"was_confirmed"`
}

// NewCancelledEvent creates a new CancelledEvent
func NewCancelledEvent(o *Order, wasConfirmed bool, actor string) *CancelledEvent {
	return &CancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID, actor),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Reason:          o.CancelReason,
		WasConfirmed:    wasConfirmed,
	}
}

// StatusChangedEvent is raised by the fulfillment transitions (process, ship, deliver)
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	From        Status    `json:"from"`
	To          Status    `json:"to"`
}

// NewStatusChangedEvent creates a new StatusChangedEvent
func NewStatusChangedEvent(o *Order, from Status, actor string) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID, actor),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		From:            from,
		To:              o.Status,
	}
}

// PaymentAppliedEvent is raised when a verified payment is applied to an order
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID       `json:"order_id"`
	PaymentReference string          `json:"payment_reference"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	Outstanding      decimal.Decimal `json:"outstanding_amount"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(o *Order, amount decimal.Decimal, reference, actor string) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderPaymentApplied, AggregateTypeOrder, o.ID, actor),
		OrderID:          o.ID,
		PaymentReference: reference,
		Amount:           amount,
		PaymentStatus:    o.PaymentStatus,
		Outstanding:      o.OutstandingAmount(),
	}
}
