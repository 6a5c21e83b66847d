package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Item is a line of an order. Allocation and fulfillment are tracked per line:
// 0 <= FulfilledQuantity <= AllocatedQuantity <= Quantity.
type Item struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ProductID         int64
	ProductName       string
	Quantity          int
	UnitPrice         decimal.Decimal
	RequestedColor    string
	Notes             string
	AllocatedQuantity int
	FulfilledQuantity int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ItemInput carries the caller-supplied fields of a new order line
type ItemInput struct {
	ProductID      int64
	ProductName    string
	Quantity       int
	UnitPrice      decimal.Decimal
	RequestedColor string
	Notes          string
}

func newItem(orderID uuid.UUID, in ItemInput) Item {
	now := time.Now()
	return Item{
		ID:             uuid.New(),
		OrderID:        orderID,
		ProductID:      in.ProductID,
		ProductName:    in.ProductName,
		Quantity:       in.Quantity,
		UnitPrice:      in.UnitPrice,
		RequestedColor: in.RequestedColor,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// LineTotal returns quantity × unit price
func (i *Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// IsFullyAllocated reports whether every unit of the line is allocated
func (i *Item) IsFullyAllocated() bool {
	return i.AllocatedQuantity == i.Quantity
}

// IsFullyFulfilled reports whether every unit of the line is fulfilled
func (i *Item) IsFullyFulfilled() bool {
	return i.FulfilledQuantity == i.Quantity
}

// PendingAllocation returns the quantity still waiting for allocation
func (i *Item) PendingAllocation() int {
	return i.Quantity - i.AllocatedQuantity
}

func (i *Item) allocate(qty int) error {
	if qty <= 0 {
		return shared.NewValidationError(shared.FieldError{Field: "quantity", Reason: "not positive"})
	}
	if i.AllocatedQuantity+qty > i.Quantity {
		return shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Cannot allocate %d: only %d pending allocation", qty, i.PendingAllocation()))
	}
	i.AllocatedQuantity += qty
	i.UpdatedAt = time.Now()
	return nil
}

func (i *Item) fulfill(qty int) error {
	if qty <= 0 {
		return shared.NewValidationError(shared.FieldError{Field: "quantity", Reason: "not positive"})
	}
	if i.FulfilledQuantity+qty > i.AllocatedQuantity {
		return shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Cannot fulfill %d: only %d allocated and unfulfilled", qty, i.AllocatedQuantity-i.FulfilledQuantity))
	}
	i.FulfilledQuantity += qty
	i.UpdatedAt = time.Now()
	return nil
}
