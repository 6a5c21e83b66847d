package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/inventory"
)

// InventoryItemModel is the persistence model for the inventory Item
// aggregate. product_id is unique: one stock row per product.
type InventoryItemModel struct {
	AggregateModel
	SKU          string          `gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	ProductID    int64           `gorm:"not null;uniqueIndex"`
	Location     string          `gorm:"type:varchar(30);not null;default:'main_warehouse'"`
	CurrentStock int             `gorm:"not null;default:0"`
	MinimumStock int             `gorm:"not null"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Color        string          `gorm:"type:varchar(100)"`
	Shade        string          `gorm:"type:varchar(100)"`
	SupplierName string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *InventoryItemModel) ToDomain() *inventory.Item {
	return &inventory.Item{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SKU:               m.SKU,
		ProductID:         m.ProductID,
		Location:          inventory.Location(m.Location),
		CurrentStock:      m.CurrentStock,
		MinimumStock:      m.MinimumStock,
		CostPrice:         m.CostPrice,
		SellingPrice:      m.SellingPrice,
		Color:             m.Color,
		Shade:             m.Shade,
		SupplierName:      m.SupplierName,
		CreatedBy:         m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain Item.
func (m *InventoryItemModel) FromDomain(i *inventory.Item) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot, i.CreatedBy)
	m.SKU = i.SKU
	m.ProductID = i.ProductID
	m.Location = string(i.Location)
	m.CurrentStock = i.CurrentStock
	m.MinimumStock = i.MinimumStock
	m.CostPrice = i.CostPrice
	m.SellingPrice = i.SellingPrice
	m.Color = i.Color
	m.Shade = i.Shade
	m.SupplierName = i.SupplierName
}

// InventoryItemModelFromDomain creates a new persistence model from a domain Item.
func InventoryItemModelFromDomain(i *inventory.Item) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}

// StockAdjustmentModel is one audit row of the stock ledger. Rows are
// append-only and survive deletion of the item.
type StockAdjustmentModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	ItemID           uuid.UUID `gorm:"type:uuid;not null;index"`
	SKU              string    `gorm:"column:sku;type:varchar(50);not null;index"`
	PreviousQuantity int       `gorm:"not null"`
	NewQuantity      int       `gorm:"not null"`
	Reason           string    `gorm:"type:varchar(500);not null"`
	Actor            string    `gorm:"type:varchar(100)"`
	Changed          bool      `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockAdjustmentModel) TableName() string {
	return "stock_adjustments"
}

// ToDomain converts the audit row to a domain StockAdjustment.
func (m *StockAdjustmentModel) ToDomain() inventory.StockAdjustment {
	return inventory.StockAdjustment{
		ID:               m.ID,
		ItemID:           m.ItemID,
		SKU:              m.SKU,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Reason:           m.Reason,
		Actor:            m.Actor,
		Changed:          m.Changed,
		CreatedAt:        m.CreatedAt,
	}
}

// StockAdjustmentModelFromDomain creates an audit row from a domain StockAdjustment.
func StockAdjustmentModelFromDomain(a *inventory.StockAdjustment) *StockAdjustmentModel {
	return &StockAdjustmentModel{
		ID:               a.ID,
		ItemID:           a.ItemID,
		SKU:              a.SKU,
		PreviousQuantity: a.PreviousQuantity,
		NewQuantity:      a.NewQuantity,
		Reason:           a.Reason,
		Actor:            a.Actor,
		Changed:          a.Changed,
		CreatedAt:        a.CreatedAt,
	}
}
