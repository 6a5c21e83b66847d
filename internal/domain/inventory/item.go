package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// DefaultMinimumStock is used when an item is added without a minimum
const DefaultMinimumStock = 10

// Item is one stock row for a product at a location. SKU is the external
// handle used by stock adjustments.
type Item struct {
	shared.BaseAggregateRoot
	SKU          string
	ProductID    int64
	Location     Location
	CurrentStock int
	MinimumStock int
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	Color        string
	Shade        string
	SupplierName string
	CreatedBy    string
}

// Attributes are the editable fields of an item. Edit replaces all of them.
type Attributes struct {
	Location     Location
	CurrentStock int
	MinimumStock *int
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	Color        string
	Shade        string
	SupplierName string
}

func (a *Attributes) normalize(defaultMinimum int) {
	if a.Location == "" {
		a.Location = LocationMainWarehouse
	}
	if a.MinimumStock == nil {
		m := defaultMinimum
		a.MinimumStock = &m
	}
}

func (a Attributes) validate(v *shared.Validator) {
	v.Check(a.Location.IsValid(), "location", "invalid")
	v.Check(a.CurrentStock >= 0, "current_stock", "negative")
	v.Check(a.MinimumStock == nil || *a.MinimumStock >= 0, "minimum_stock", "negative")
	v.Check(!a.CostPrice.IsNegative(), "cost_price", "negative")
	v.Check(!a.SellingPrice.IsNegative(), "selling_price", "negative")
}

// DefaultSKU builds the SKU assigned when none is supplied
func DefaultSKU(productID int64, location Location) string {
	return fmt.Sprintf("TB-%05d-%s", productID, location.Code())
}

// NewItem creates a stock row. An empty sku gets DefaultSKU; a nil minimum
// gets defaultMinimum (DefaultMinimumStock when zero or negative).
func NewItem(sku string, productID int64, attrs Attributes, defaultMinimum int, actor string) (*Item, error) {
	if defaultMinimum <= 0 {
		defaultMinimum = DefaultMinimumStock
	}
	attrs.normalize(defaultMinimum)

	var v shared.Validator
	v.Check(productID > 0, "product_id", "required")
	attrs.validate(&v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	sku = strings.TrimSpace(sku)
	if sku == "" {
		sku = DefaultSKU(productID, attrs.Location)
	}

	item := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		ProductID:         productID,
		CreatedBy:         actor,
	}
	item.apply(attrs)

	item.AddDomainEvent(NewItemAddedEvent(item, actor))
	return item, nil
}

func (i *Item) apply(attrs Attributes) {
	i.Location = attrs.Location
	i.CurrentStock = attrs.CurrentStock
	i.MinimumStock = *attrs.MinimumStock
	i.CostPrice = attrs.CostPrice
	i.SellingPrice = attrs.SellingPrice
	i.Color = attrs.Color
	i.Shade = attrs.Shade
	i.SupplierName = attrs.SupplierName
}

// StockStatus classifies the current stock against the minimum
func (i *Item) StockStatus() StockStatus {
	return ClassifyStock(i.CurrentStock, i.MinimumStock)
}

// Edit replaces every editable field. Stock changes made here carry no reason.
func (i *Item) Edit(attrs Attributes, actor string) error {
	if attrs.MinimumStock == nil {
		m := i.MinimumStock
		attrs.MinimumStock = &m
	}
	attrs.normalize(i.MinimumStock)

	var v shared.Validator
	attrs.validate(&v)
	if err := v.Err(); err != nil {
		return err
	}

	i.apply(attrs)
	i.UpdatedAt = time.Now()
	i.AddDomainEvent(NewItemUpdatedEvent(i, actor))
	return nil
}

// AdjustStock sets current stock to newQuantity (absolute, not a delta) and
// returns the audit record. Re-applying the same quantity is a no-op on the
// stock but still produces an audit record with Changed=false.
func (i *Item) AdjustStock(newQuantity int, reason, actor string) (*StockAdjustment, error) {
	reason = strings.TrimSpace(reason)
	var v shared.Validator
	v.Check(newQuantity >= 0, "new_quantity", "negative")
	v.Check(reason != "", "reason", "required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	previous := i.CurrentStock
	previousStatus := i.StockStatus()
	adj := newStockAdjustment(i, previous, newQuantity, reason, actor)
	if !adj.Changed {
		return adj, nil
	}

	i.CurrentStock = newQuantity
	i.UpdatedAt = adj.CreatedAt

	i.AddDomainEvent(NewStockAdjustedEvent(i, adj))
	if status := i.StockStatus(); status != StockStatusInStock && status != previousStatus {
		i.AddDomainEvent(NewLowStockDetectedEvent(i, status))
	}
	return adj, nil
}

// Decrement removes qty units through the audited adjustment path.
// It fails with shared.ErrInsufficientStock rather than going negative.
func (i *Item) Decrement(qty int, reason, actor string) (*StockAdjustment, error) {
	if qty <= 0 {
		return nil, shared.NewValidationError(shared.FieldError{Field: "quantity", Reason: "not positive"})
	}
	if qty > i.CurrentStock {
		return nil, shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock for %s: %d requested, %d on hand", i.SKU, qty, i.CurrentStock))
	}
	return i.AdjustStock(i.CurrentStock-qty, reason, actor)
}

// CanFulfill reports whether qty units are on hand
func (i *Item) CanFulfill(qty int) bool {
	return i.CurrentStock >= qty
}

// CostValue returns current stock valued at cost price
func (i *Item) CostValue() decimal.Decimal {
	return i.CostPrice.Mul(decimal.NewFromInt(int64(i.CurrentStock)))
}

// RetailValue returns current stock valued at selling price
func (i *Item) RetailValue() decimal.Decimal {
	return i.SellingPrice.Mul(decimal.NewFromInt(int64(i.CurrentStock)))
}

// StockAdjustment is the audit record of one AdjustStock call
type StockAdjustment struct {
	ID               uuid.UUID
	ItemID           uuid.UUID
	SKU              string
	PreviousQuantity int
	NewQuantity      int
	Reason           string
	Actor            string
	Changed          bool
	CreatedAt        time.Time
}

func newStockAdjustment(i *Item, previous, next int, reason, actor string) *StockAdjustment {
	return &StockAdjustment{
		ID:               uuid.New(),
		ItemID:           i.ID,
		SKU:              i.SKU,
		PreviousQuantity: previous,
		NewQuantity:      next,
		Reason:           reason,
		Actor:            actor,
		Changed:          previous != next,
		CreatedAt:        time.Now(),
	}
}

// Delta returns the signed stock change
func (a *StockAdjustment) Delta() int {
	return a.NewQuantity - a.PreviousQuantity
}

// Stats summarizes the whole ledger
type Stats struct {
	TotalItems       int64
	TotalUnits       int64
	InStock          int64
	LowStock         int64
	OutOfStock       int64
	TotalCostValue   decimal.Decimal
	TotalRetailValue decimal.Decimal
}
