package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/catalog"
	"github.com/tbeauty/backend/internal/domain/inventory"
)

// ItemResponse represents an inventory item in API responses
type ItemResponse struct {
	ID            uuid.UUID             `json:"id"`
	SKU           string                `json:"sku"`
	ProductID     int64                 `json:"product_id"`
	Product       *ProductSummary       `json:"product,omitempty"`
	Location      inventory.Location    `json:"location"`
	LocationLabel string                `json:"location_label"`
	CurrentStock  int                   `json:"current_stock"`
	MinimumStock  int                   `json:"minimum_stock"`
	StockStatus   inventory.StockStatus `json:"stock_status"`
	CostPrice     decimal.Decimal       `json:"cost_price"`
	SellingPrice  decimal.Decimal       `json:"selling_price"`
	Color         string                `json:"color,omitempty"`
	Shade         string                `json:"shade,omitempty"`
	SupplierName  string                `json:"supplier_name,omitempty"`
	CreatedBy     string                `json:"created_by,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Version       int                   `json:"version"`
}

// ProductSummary is the catalog data shown next to a stock row
type ProductSummary struct {
	Name     string            `json:"name"`
	Brand    catalog.Reference `json:"brand"`
	Category catalog.Reference `json:"category"`
	IsActive bool              `json:"is_active"`
}

// ListFilter represents filter options for the inventory list
type ListFilter struct {
	Search         string `form:"search"`
	Brand          string `form:"brand"`
	Category       string `form:"category"`
	Location       string `form:"location" binding:"omitempty,location"`
	LowStockOnly   bool   `form:"low_stock_only"`
	OutOfStockOnly bool   `form:"out_of_stock_only"`
	Page           int    `form:"page"`
	PageSize       int    `form:"size"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AddItemRequest represents a request to add a stock row
type AddItemRequest struct {
	ProductID    int64           `json:"product_id" binding:"required,min=1"`
	SKU          string          `json:"sku" binding:"omitempty,max=64"`
	Location     string          `json:"location" binding:"omitempty,location"`
	CurrentStock int             `json:"current_stock" binding:"min=0"`
	MinimumStock *int            `json:"minimum_stock" binding:"omitempty,min=0"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Color        string          `json:"color" binding:"max=50"`
	Shade        string          `json:"shade" binding:"max=50"`
	SupplierName string          `json:"supplier_name" binding:"max=200"`
}

// EditItemRequest replaces every editable field of a stock row
type EditItemRequest struct {
	Location     string          `json:"location" binding:"omitempty,location"`
	CurrentStock int             `json:"current_stock" binding:"min=0"`
	MinimumStock *int            `json:"minimum_stock" binding:"omitempty,min=0"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Color        string          `json:"color" binding:"max=50"`
	Shade        string          `json:"shade" binding:"max=50"`
	SupplierName string          `json:"supplier_name" binding:"max=200"`
}

// AdjustStockRequest sets the absolute stock of a SKU. NewQuantity is a
// pointer so that a missing value can be told apart from zero.
type AdjustStockRequest struct {
	NewQuantity *int   `form:"new_quantity" json:"new_quantity"`
	Reason      string `form:"reason" json:"reason"`
}

// AdjustmentResponse represents one audit row
type AdjustmentResponse struct {
	ID               uuid.UUID `json:"id"`
	SKU              string    `json:"sku"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	Delta            int       `json:"delta"`
	Reason           string    `json:"reason"`
	Actor            string    `json:"actor"`
	Changed          bool      `json:"changed"`
	CreatedAt        time.Time `json:"created_at"`
}

// AdjustStockResponse carries the updated item and its audit row
type AdjustStockResponse struct {
	Item       ItemResponse       `json:"item"`
	Adjustment AdjustmentResponse `json:"adjustment"`
}

// StatsResponse summarizes the whole ledger
type StatsResponse struct {
	TotalItems       int64           `json:"total_items"`
	TotalUnits       int64           `json:"total_units"`
	InStock          int64           `json:"in_stock"`
	LowStock         int64           `json:"low_stock"`
	OutOfStock       int64           `json:"out_of_stock"`
	TotalCostValue   decimal.Decimal `json:"total_cost_value"`
	TotalRetailValue decimal.Decimal `json:"total_retail_value"`
}

// ToItemResponse converts a domain item. product may be nil.
func ToItemResponse(item *inventory.Item, product *catalog.Product) ItemResponse {
	resp := ItemResponse{
		ID:            item.ID,
		SKU:           item.SKU,
		ProductID:     item.ProductID,
		Location:      item.Location,
		LocationLabel: item.Location.Label(),
		CurrentStock:  item.CurrentStock,
		MinimumStock:  item.MinimumStock,
		StockStatus:   item.StockStatus(),
		CostPrice:     item.CostPrice,
		SellingPrice:  item.SellingPrice,
		Color:         item.Color,
		Shade:         item.Shade,
		SupplierName:  item.SupplierName,
		CreatedBy:     item.CreatedBy,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
		Version:       item.Version,
	}
	if product != nil {
		resp.Product = &ProductSummary{
			Name:     product.Name,
			Brand:    product.Brand,
			Category: product.Category,
			IsActive: product.IsActive,
		}
	}
	return resp
}

// ToItemResponses converts list views
func ToItemResponses(views []inventory.ItemView) []ItemResponse {
	responses := make([]ItemResponse, len(views))
	for i := range views {
		responses[i] = ToItemResponse(&views[i].Item, views[i].Product)
	}
	return responses
}

// ToAdjustmentResponse converts an audit row
func ToAdjustmentResponse(adj *inventory.StockAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:               adj.ID,
		SKU:              adj.SKU,
		PreviousQuantity: adj.PreviousQuantity,
		NewQuantity:      adj.NewQuantity,
		Delta:            adj.Delta(),
		Reason:           adj.Reason,
		Actor:            adj.Actor,
		Changed:          adj.Changed,
		CreatedAt:        adj.CreatedAt,
	}
}

// ToAdjustmentResponses converts audit rows
func ToAdjustmentResponses(adjs []inventory.StockAdjustment) []AdjustmentResponse {
	responses := make([]AdjustmentResponse, len(adjs))
	for i := range adjs {
		responses[i] = ToAdjustmentResponse(&adjs[i])
	}
	return responses
}

// ToStatsResponse converts ledger stats
func ToStatsResponse(s *inventory.Stats) StatsResponse {
	return StatsResponse{
		TotalItems:       s.TotalItems,
		TotalUnits:       s.TotalUnits,
		InStock:          s.InStock,
		LowStock:         s.LowStock,
		OutOfStock:       s.OutOfStock,
		TotalCostValue:   s.TotalCostValue,
		TotalRetailValue: s.TotalRetailValue,
	}
}
