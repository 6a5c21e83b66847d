package invoice

import (
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated       = "InvoiceCreated"
	EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"
)

// CreatedEvent is raised when an invoice is created
type CreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    int64           `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Derived       bool            `json:"derived"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(inv *Invoice, actor string) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID, actor),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		TotalAmount:     inv.TotalAmount(),
		Derived:         inv.PaymentID != nil,
	}
}

// StatusChangedEvent is raised on every status transition
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	From          Status `json:"from"`
	To            Status `json:"to"`
}

// NewStatusChangedEvent creates a new StatusChangedEvent
func NewStatusChangedEvent(inv *Invoice, from Status, actor string) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, AggregateTypeInvoice, inv.ID, actor),
		InvoiceNumber:   inv.InvoiceNumber,
		From:            from,
		To:              inv.Status,
	}
}
