package inventory

import (
	"github.com/google/uuid"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInventoryItem = "InventoryItem"

// Event type constants
const (
	EventTypeItemAdded        = "InventoryItemAdded"
	EventTypeItemUpdated      = "InventoryItemUpdated"
	EventTypeItemDeleted      = "InventoryItemDeleted"
	EventTypeStockAdjusted    = "StockAdjusted"
	EventTypeLowStockDetected = "LowStockDetected"
)

// ItemAddedEvent is raised when a stock row is created
type ItemAddedEvent struct {
	shared.BaseDomainEvent
	SKU          string   `json:"sku"`
	ProductID    int64    `json:"product_id"`
	Location     Location `json:"location"`
	CurrentStock int      `json:"current_stock"`
}

// NewItemAddedEvent creates a new ItemAddedEvent
func NewItemAddedEvent(item *Item, actor string) *ItemAddedEvent {
	return &ItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemAdded, AggregateTypeInventoryItem, item.ID, actor),
		SKU:             item.SKU,
		ProductID:       item.ProductID,
		Location:        item.Location,
		CurrentStock:    item.CurrentStock,
	}
}

// ItemUpdatedEvent is raised by Edit
type ItemUpdatedEvent struct {
	shared.BaseDomainEvent
	SKU          string `json:"sku"`
	CurrentStock int    `json:"current_stock"`
	MinimumStock int    `json:"minimum_stock"`
}

// NewItemUpdatedEvent creates a new ItemUpdatedEvent
func NewItemUpdatedEvent(item *Item, actor string) *ItemUpdatedEvent {
	return &ItemUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemUpdated, AggregateTypeInventoryItem, item.ID, actor),
		SKU:             item.SKU,
		CurrentStock:    item.CurrentStock,
		MinimumStock:    item.MinimumStock,
	}
}

// ItemDeletedEvent is raised when a stock row is removed
type ItemDeletedEvent struct {
	shared.BaseDomainEvent
	SKU       string `json:"sku"`
	ProductID int64  `json:"product_id"`
}

// NewItemDeletedEvent creates a new ItemDeletedEvent
func NewItemDeletedEvent(item *Item, actor string) *ItemDeletedEvent {
	return &ItemDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemDeleted, AggregateTypeInventoryItem, item.ID, actor),
		SKU:             item.SKU,
		ProductID:       item.ProductID,
	}
}

// StockAdjustedEvent is raised when an adjustment changes current stock
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	AdjustmentID     uuid.UUID `json:"adjustment_id"`
	SKU              string    `json:"sku"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	Reason           string    `json:"reason"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(item *Item, adj *StockAdjustment) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeInventoryItem, item.ID, adj.Actor),
		AdjustmentID:     adj.ID,
		SKU:              item.SKU,
		PreviousQuantity: adj.PreviousQuantity,
		NewQuantity:      adj.NewQuantity,
		Reason:           adj.Reason,
	}
}

// LowStockDetectedEvent is raised when an adjustment moves an item into low or out of stock
type LowStockDetectedEvent struct {
	shared.BaseDomainEvent
	SKU          string      `json:"sku"`
	ProductID    int64       `json:"product_id"`
	CurrentStock int         `json:"current_stock"`
	MinimumStock int         `json:"minimum_stock"`
	Status       StockStatus `json:"stock_status"`
}

// NewLowStockDetectedEvent creates a new LowStockDetectedEvent
func NewLowStockDetectedEvent(item *Item, status StockStatus) *LowStockDetectedEvent {
	return &LowStockDetectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockDetected, AggregateTypeInventoryItem, item.ID, ""),
		SKU:             item.SKU,
		ProductID:       item.ProductID,
		CurrentStock:    item.CurrentStock,
		MinimumStock:    item.MinimumStock,
		Status:          status,
	}
}
