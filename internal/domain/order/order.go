package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Order is the order aggregate root: header, line items and the two
// independent status axes (fulfillment status and payment status).
//
// Money totals are never stored on the aggregate; TotalAmount and
// OutstandingAmount are derived from the fields below on every call.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string
	CustomerID      int64
	CustomerName    string
	CustomerEmail   string
	Status          Status
	PaymentStatus   PaymentStatus
	Source          Source
	DeliveryMethod  DeliveryMethod
	DeliveryAddress string
	Notes           string
	Items           []Item
	DiscountAmount  decimal.Decimal
	TaxAmount       decimal.Decimal
	ShippingCost    decimal.Decimal
	AmountPaid      decimal.Decimal
	CancelReason    string
	CreatedBy       string
	ConfirmedAt     *time.Time
	ProcessedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
}

// CreateParams is the input of NewOrder
type CreateParams struct {
	OrderNumber     string
	CustomerID      int64
	CustomerName    string
	CustomerEmail   string
	Source          Source
	DeliveryMethod  DeliveryMethod
	DeliveryAddress string
	Notes           string
	Items           []ItemInput
	CreatedBy       string
}

// NewOrder creates a pending order. subtotal is Σ(quantity × unit_price) and
// no tax, discount or shipping is applied at creation time.
func NewOrder(p CreateParams) (*Order, error) {
	var v shared.Validator
	v.Check(p.OrderNumber != "", "order_number", "required")
	v.Check(p.CustomerID > 0, "customer_id", "required")
	v.Check(len(p.Items) > 0, "items", "required")
	if p.Source == "" {
		p.Source = SourceManual
	}
	if p.DeliveryMethod == "" {
		p.DeliveryMethod = DeliveryStandard
	}
	v.Check(p.Source.IsValid(), "order_source", "invalid")
	v.Check(p.DeliveryMethod.IsValid(), "delivery_method", "invalid")
	for idx, in := range p.Items {
		prefix := fmt.Sprintf("items[%d].", idx)
		v.Check(in.ProductID > 0, prefix+"product_id", "required")
		v.Check(in.Quantity > 0, prefix+"quantity", "not positive")
		v.Check(!in.UnitPrice.IsNegative(), prefix+"unit_price", "negative")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       p.OrderNumber,
		CustomerID:        p.CustomerID,
		CustomerName:      p.CustomerName,
		CustomerEmail:     p.CustomerEmail,
		Status:            StatusPending,
		PaymentStatus:     PaymentStatusPending,
		Source:            p.Source,
		DeliveryMethod:    p.DeliveryMethod,
		DeliveryAddress:   p.DeliveryAddress,
		Notes:             p.Notes,
		Items:             make([]Item, 0, len(p.Items)),
		DiscountAmount:    decimal.Zero,
		TaxAmount:         decimal.Zero,
		ShippingCost:      decimal.Zero,
		AmountPaid:        decimal.Zero,
		CreatedBy:         p.CreatedBy,
	}
	for _, in := range p.Items {
		o.Items = append(o.Items, newItem(o.ID, in))
	}

	o.AddDomainEvent(NewCreatedEvent(o, p.CreatedBy))
	return o, nil
}

// Subtotal returns Σ(quantity × unit_price) over all lines
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for idx := range o.Items {
		total = total.Add(o.Items[idx].LineTotal())
	}
	return total
}

// TotalAmount returns subtotal − discount + tax + shipping
func (o *Order) TotalAmount() decimal.Decimal {
	return o.Subtotal().Sub(o.DiscountAmount).Add(o.TaxAmount).Add(o.ShippingCost)
}

// OutstandingAmount returns total − paid, floored at zero
func (o *Order) OutstandingAmount() decimal.Decimal {
	outstanding := o.TotalAmount().Sub(o.AmountPaid)
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// Confirm transitions pending → confirmed and stamps ConfirmedAt
func (o *Order) Confirm(actor string) error {
	if !o.Status.CanTransitionTo(StatusConfirmed) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = StatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewConfirmedEvent(o, actor))
	return nil
}

// Cancel transitions pending or confirmed → cancelled. The reason is mandatory.
// Allocations are left as they are.
func (o *Order) Cancel(reason, actor string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError(shared.FieldError{Field: "reason", Reason: "required"})
	}

	wasConfirmed := o.Status == StatusConfirmed
	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewCancelledEvent(o, wasConfirmed, actor))
	return nil
}

// Process transitions confirmed → processing
func (o *Order) Process(actor string) error {
	now, err := o.transition(StatusProcessing, "process")
	if err != nil {
		return err
	}
	o.ProcessedAt = &now
	o.AddDomainEvent(NewStatusChangedEvent(o, StatusConfirmed, actor))
	return nil
}

// Ship transitions processing → shipped
func (o *Order) Ship(actor string) error {
	now, err := o.transition(StatusShipped, "ship")
	if err != nil {
		return err
	}
	o.ShippedAt = &now
	o.AddDomainEvent(NewStatusChangedEvent(o, StatusProcessing, actor))
	return nil
}

// Deliver transitions shipped → delivered
func (o *Order) Deliver(actor string) error {
	now, err := o.transition(StatusDelivered, "deliver")
	if err != nil {
		return err
	}
	o.DeliveredAt = &now
	o.AddDomainEvent(NewStatusChangedEvent(o, StatusShipped, actor))
	return nil
}

func (o *Order) transition(target Status, verb string) (time.Time, error) {
	if !o.Status.CanTransitionTo(target) {
		return time.Time{}, shared.NewInvalidStateError(fmt.Sprintf("Cannot %s order in %s status", verb, o.Status))
	}
	now := time.Now()
	o.Status = target
	o.UpdatedAt = now
	return now, nil
}

// UpdateCharges replaces discount, tax and shipping. Allowed while pending or confirmed.
func (o *Order) UpdateCharges(discount, tax, shipping decimal.Decimal) error {
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot change charges of order in %s status", o.Status))
	}
	var v shared.Validator
	v.Check(!discount.IsNegative(), "discount_amount", "negative")
	v.Check(!tax.IsNegative(), "tax_amount", "negative")
	v.Check(!shipping.IsNegative(), "shipping_cost", "negative")
	v.Check(discount.LessThanOrEqual(o.Subtotal()), "discount_amount", "greater than subtotal")
	if err := v.Err(); err != nil {
		return err
	}

	o.DiscountAmount = discount
	o.TaxAmount = tax
	o.ShippingCost = shipping
	o.refreshPaymentStatus()
	o.UpdatedAt = time.Now()
	return nil
}

// ApplyPayment adds a verified payment amount to AmountPaid and moves the
// payment status to paid or partial.
func (o *Order) ApplyPayment(amount decimal.Decimal, reference, actor string) error {
	if !amount.IsPositive() {
		return shared.NewValidationError(shared.FieldError{Field: "amount", Reason: "not positive"})
	}
	if o.Status == StatusCancelled {
		return shared.NewInvalidStateError("Cannot apply payment to a cancelled order")
	}
	if o.PaymentStatus == PaymentStatusRefunded {
		return shared.NewInvalidStateError("Cannot apply payment to a refunded order")
	}

	o.AmountPaid = o.AmountPaid.Add(amount)
	o.refreshPaymentStatus()
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewPaymentAppliedEvent(o, amount, reference, actor))
	return nil
}

// Refund marks a paid or partially paid order as refunded
func (o *Order) Refund() error {
	if o.PaymentStatus != PaymentStatusPaid && o.PaymentStatus != PaymentStatusPartial {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot refund order with payment status %s", o.PaymentStatus))
	}
	o.PaymentStatus = PaymentStatusRefunded
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) refreshPaymentStatus() {
	if o.PaymentStatus == PaymentStatusRefunded || o.AmountPaid.IsZero() {
		return
	}
	if o.OutstandingAmount().IsZero() {
		o.PaymentStatus = PaymentStatusPaid
	} else {
		o.PaymentStatus = PaymentStatusPartial
	}
}

// AllocateItem reserves qty more units of a line against stock
func (o *Order) AllocateItem(itemID uuid.UUID, qty int) error {
	if o.Status != StatusConfirmed && o.Status != StatusProcessing {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot allocate items of order in %s status", o.Status))
	}
	item := o.GetItem(itemID)
	if item == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Order item not found")
	}
	if err := item.allocate(qty); err != nil {
		return err
	}
	o.UpdatedAt = time.Now()
	return nil
}

// FulfillItem records qty more units of a line as shipped or delivered
func (o *Order) FulfillItem(itemID uuid.UUID, qty int) error {
	switch o.Status {
	case StatusConfirmed, StatusProcessing, StatusShipped:
	default:
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot fulfill items of order in %s status", o.Status))
	}
	item := o.GetItem(itemID)
	if item == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Order item not found")
	}
	if err := item.fulfill(qty); err != nil {
		return err
	}
	o.UpdatedAt = time.Now()
	return nil
}

// GetItem returns an item by its ID
func (o *Order) GetItem(itemID uuid.UUID) *Item {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of items in the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// IsFullyAllocated reports whether every line is fully allocated
func (o *Order) IsFullyAllocated() bool {
	for idx := range o.Items {
		if !o.Items[idx].IsFullyAllocated() {
			return false
		}
	}
	return len(o.Items) > 0
}

// IsFullyFulfilled reports whether every line is fully fulfilled
func (o *Order) IsFullyFulfilled() bool {
	for idx := range o.Items {
		if !o.Items[idx].IsFullyFulfilled() {
			return false
		}
	}
	return len(o.Items) > 0
}
