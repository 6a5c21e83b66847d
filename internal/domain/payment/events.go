package payment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePayment = "Payment"

// Event type constants
const (
	EventTypePaymentRecorded = "PaymentRecorded"
	EventTypePaymentVerified = "PaymentVerified"
)

// RecordedEvent is raised when a payment is submitted
type RecordedEvent struct {
	shared.BaseDomainEvent
	Reference string          `json:"payment_reference"`
	OrderID   *uuid.UUID      `json:"order_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Method    Method          `json:"payment_method"`
}

// NewRecordedEvent creates a new RecordedEvent
func NewRecordedEvent(p *Payment, actor string) *RecordedEvent {
	return &RecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID, actor),
		Reference:       p.Reference,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		Method:          p.Method,
	}
}

// VerifiedEvent is raised once, when a payment becomes verified.
// Its amount is applied to the referenced order.
type VerifiedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	Reference  string          `json:"payment_reference"`
	OrderID    *uuid.UUID      `json:"order_id,omitempty"`
	CustomerID int64           `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     Method          `json:"payment_method"`
}

// NewVerifiedEvent creates a new VerifiedEvent
func NewVerifiedEvent(p *Payment, actor string) *VerifiedEvent {
	return &VerifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentVerified, AggregateTypePayment, p.ID, actor),
		PaymentID:       p.ID,
		Reference:       p.Reference,
		OrderID:         p.OrderID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Method:          p.Method,
	}
}
