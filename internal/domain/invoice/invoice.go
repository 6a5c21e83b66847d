package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Status is the lifecycle state of an invoice
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusSent
	case StatusSent:
		return target == StatusPaid || target == StatusOverdue
	case StatusOverdue:
		return target == StatusPaid
	}
	return false
}

// Line is an invoice line. Its total is quantity × unit_price − discount.
type Line struct {
	ID             uuid.UUID
	Description    string
	Quantity       int
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
}

// Gross returns quantity × unit_price
func (l Line) Gross() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total returns quantity × unit_price − discount_amount
func (l Line) Total() decimal.Decimal {
	return l.Gross().Sub(l.DiscountAmount)
}

// Invoice is an immutable snapshot of what is owed. Lines and totals are fixed
// at creation; only the status and the paid amount move afterwards.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber      string
	CustomerID         int64
	OrderID            *uuid.UUID
	PaymentID          *uuid.UUID
	Description        string
	Notes              string
	TermsAndConditions string
	PaymentTerms       string
	Lines              []Line
	TaxAmount          decimal.Decimal
	AmountPaid         decimal.Decimal
	DueDate            time.Time
	Status             Status
	SnapshotKey        string
	SentAt             *time.Time
	PaidAt             *time.Time
	CreatedBy          string
}

// LineInput is a caller-supplied invoice line
type LineInput struct {
	Description    string
	Quantity       int
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
}

// CreateParams is the input of NewInvoice
type CreateParams struct {
	InvoiceNumber      string
	CustomerID         int64
	OrderID            *uuid.UUID
	PaymentID          *uuid.UUID
	Description        string
	Notes              string
	TermsAndConditions string
	PaymentTerms       string
	DueDate            time.Time
	TaxAmount          decimal.Decimal
	Lines              []LineInput
	CreatedBy          string
}

// NewInvoice creates a draft invoice. Zero-valued terms and due date are
// filled from defaults.
func NewInvoice(p CreateParams, defaults Defaults) (*Invoice, error) {
	defaults = defaults.withFallbacks()

	var v shared.Validator
	v.Check(p.InvoiceNumber != "", "invoice_number", "required")
	v.Check(p.CustomerID > 0, "customer_id", "required")
	v.Check(len(p.Lines) > 0, "items", "required")
	v.Check(!p.TaxAmount.IsNegative(), "tax_amount", "negative")
	for idx, l := range p.Lines {
		prefix := fmt.Sprintf("items[%d].", idx)
		gross := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		v.Check(strings.TrimSpace(l.Description) != "", prefix+"description", "required")
		v.Check(l.Quantity > 0, prefix+"quantity", "not positive")
		v.Check(!l.UnitPrice.IsNegative(), prefix+"unit_price", "negative")
		v.Check(!l.DiscountAmount.IsNegative(), prefix+"discount_amount", "negative")
		v.Check(l.DiscountAmount.LessThanOrEqual(gross) || l.Quantity <= 0, prefix+"discount_amount", "greater than line amount")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	inv := &Invoice{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		InvoiceNumber:      p.InvoiceNumber,
		CustomerID:         p.CustomerID,
		OrderID:            p.OrderID,
		PaymentID:          p.PaymentID,
		Description:        p.Description,
		Notes:              p.Notes,
		TermsAndConditions: p.TermsAndConditions,
		PaymentTerms:       p.PaymentTerms,
		TaxAmount:          p.TaxAmount,
		AmountPaid:         decimal.Zero,
		DueDate:            p.DueDate,
		Status:             StatusDraft,
		CreatedBy:          p.CreatedBy,
	}
	if inv.PaymentTerms == "" {
		inv.PaymentTerms = defaults.PaymentTerms
	}
	if inv.TermsAndConditions == "" {
		inv.TermsAndConditions = defaults.TermsAndConditions
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = inv.CreatedAt.AddDate(0, 0, defaults.DueDays)
	}
	inv.Lines = make([]Line, 0, len(p.Lines))
	for _, l := range p.Lines {
		inv.Lines = append(inv.Lines, Line{
			ID:             uuid.New(),
			Description:    strings.TrimSpace(l.Description),
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			DiscountAmount: l.DiscountAmount,
		})
	}

	inv.AddDomainEvent(NewCreatedEvent(inv, p.CreatedBy))
	return inv, nil
}

// Subtotal returns Σ quantity × unit_price
func (i *Invoice) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range i.Lines {
		total = total.Add(l.Gross())
	}
	return total
}

// DiscountAmount returns Σ line discounts
func (i *Invoice) DiscountAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range i.Lines {
		total = total.Add(l.DiscountAmount)
	}
	return total
}

// TotalAmount returns subtotal − discount + tax
func (i *Invoice) TotalAmount() decimal.Decimal {
	return i.Subtotal().Sub(i.DiscountAmount()).Add(i.TaxAmount)
}

// BalanceDue returns total − amount paid
func (i *Invoice) BalanceDue() decimal.Decimal {
	return i.TotalAmount().Sub(i.AmountPaid)
}

// IsPastDue reports whether the due date has passed on an unpaid invoice
func (i *Invoice) IsPastDue(now time.Time) bool {
	return i.Status != StatusPaid && now.After(i.DueDate)
}

// Send transitions draft → sent
func (i *Invoice) Send(actor string) error {
	if err := i.transition(StatusSent, "send", actor); err != nil {
		return err
	}
	now := i.UpdatedAt
	i.SentAt = &now
	return nil
}

// MarkOverdue transitions sent → overdue
func (i *Invoice) MarkOverdue(actor string) error {
	return i.transition(StatusOverdue, "mark overdue", actor)
}

// MarkPaid transitions sent or overdue → paid and settles the balance
func (i *Invoice) MarkPaid(actor string) error {
	if err := i.transition(StatusPaid, "mark paid", actor); err != nil {
		return err
	}
	now := i.UpdatedAt
	i.PaidAt = &now
	i.AmountPaid = i.TotalAmount()
	return nil
}

func (i *Invoice) transition(target Status, verb, actor string) error {
	if !i.Status.CanTransitionTo(target) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot %s invoice in %s status", verb, i.Status))
	}
	from := i.Status
	i.Status = target
	i.UpdatedAt = time.Now()
	i.AddDomainEvent(NewStatusChangedEvent(i, from, actor))
	return nil
}
