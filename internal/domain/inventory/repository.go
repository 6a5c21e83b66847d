package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Repository defines the interface for stock ledger persistence
type Repository interface {
	// FindByID finds an item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindBySKU finds an item by SKU
	FindBySKU(ctx context.Context, sku string) (*Item, error)

	// FindByProductID finds the item of a product
	FindByProductID(ctx context.Context, productID int64) (*Item, error)

	// ExistsByProductID reports whether a product already has a stock row
	ExistsByProductID(ctx context.Context, productID int64) (bool, error)

	// FindAll lists items. Supported filter keys: brand, category, location,
	// low_stock_only, out_of_stock_only. Search matches SKU, color, shade,
	// supplier and product name.
	FindAll(ctx context.Context, filter shared.Filter) ([]ItemView, error)

	// Count counts items matching the filter, ignoring pagination
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates an item
	Save(ctx context.Context, item *Item) error

	// SaveWithLock updates an item if its stored version still matches
	SaveWithLock(ctx context.Context, item *Item) error

	// SaveAdjustment persists the audit record and, when it changed stock,
	// the item under its version check, in one transaction
	SaveAdjustment(ctx context.Context, item *Item, adj *StockAdjustment) error

	// FindAdjustments lists the audit trail of a SKU, newest first
	FindAdjustments(ctx context.Context, sku string, filter shared.Filter) ([]StockAdjustment, int64, error)

	// Delete removes an item
	Delete(ctx context.Context, id uuid.UUID) error

	// Stats aggregates the whole ledger
	Stats(ctx context.Context) (*Stats, error)
}
