package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/inventory"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const inventoryTable = "inventory_items"

// GormInventoryRepository implements inventory.Repository using GORM
type GormInventoryRepository struct {
	db      *gorm.DB
	catalog *GormCatalogRepository
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db, catalog: NewGormCatalogRepository(db)}
}

func inventoryNotFound(key string) error {
	return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Inventory item %s not found", key))
}

func (r *GormInventoryRepository) findOne(ctx context.Context, key, where string, args ...interface{}) (*inventory.Item, error) {
	var m models.InventoryItemModel
	if err := r.db.WithContext(ctx).Where(where, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventoryNotFound(key)
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByID finds an inventory item by its ID
func (r *GormInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	return r.findOne(ctx, id.String(), "id = ?", id)
}

// FindBySKU finds an inventory item by SKU
func (r *GormInventoryRepository) FindBySKU(ctx context.Context, sku string) (*inventory.Item, error) {
	return r.findOne(ctx, sku, "sku = ?", sku)
}

// FindByProductID finds the inventory item of a product
func (r *GormInventoryRepository) FindByProductID(ctx context.Context, productID int64) (*inventory.Item, error) {
	return r.findOne(ctx, fmt.Sprintf("for product %d", productID), "product_id = ?", productID)
}

// ExistsByProductID reports whether a product already has a stock row
func (r *GormInventoryRepository) ExistsByProductID(ctx context.Context, productID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists items joined with their catalog product
func (r *GormInventoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.ItemView, error) {
	query := r.applyFilter(r.joined(ctx), filter)
	query = applySortAndPage(query, inventoryTable, filter.OrderBy, filter.OrderDir, InventorySortFields, filter.Page, filter.PageSize)

	var rows []models.InventoryItemModel
	if err := query.Select(inventoryTable + ".*").Find(&rows).Error; err != nil {
		return nil, err
	}

	ids := make([]int64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ProductID
	}
	products, err := r.catalog.FindProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]inventory.ItemView, len(rows))
	for i := range rows {
		views[i] = inventory.ItemView{Item: *rows[i].ToDomain()}
		if p, ok := products[rows[i].ProductID]; ok {
			views[i].Product = &p
		}
	}
	return views, nil
}

// Count counts items matching the filter
func (r *GormInventoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.joined(ctx), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInventoryRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Joins("LEFT JOIN products ON products.id = inventory_items.product_id")
}

// Save inserts or overwrites an item without a version check
func (r *GormInventoryRepository) Save(ctx context.Context, item *inventory.Item) error {
	return r.db.WithContext(ctx).Save(models.InventoryItemModelFromDomain(item)).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInventoryRepository) SaveWithLock(ctx context.Context, item *inventory.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateItemWithLock(tx, item)
	})
}

// SaveAdjustment writes the audit row and, when the stock changed, the item
// itself under the version check, in one transaction.
func (r *GormInventoryRepository) SaveAdjustment(ctx context.Context, item *inventory.Item, adj *inventory.StockAdjustment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if adj.Changed {
			if err := updateItemWithLock(tx, item); err != nil {
				return err
			}
		}
		return tx.Create(models.StockAdjustmentModelFromDomain(adj)).Error
	})
}

func updateItemWithLock(tx *gorm.DB, item *inventory.Item) error {
	m := models.InventoryItemModelFromDomain(item)
	m.Version = item.Version + 1
	m.UpdatedAt = time.Now()

	result := tx.Model(&models.InventoryItemModel{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(map[string]interface{}{
			"location":      m.Location,
			"current_stock": m.CurrentStock,
			"minimum_stock": m.MinimumStock,
			"cost_price":    m.CostPrice,
			"selling_price": m.SellingPrice,
			"color":         m.Color,
			"shade":         m.Shade,
			"supplier_name": m.SupplierName,
			"version":       m.Version,
			"updated_at":    m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.InventoryItemModel{}).Where("id = ?", item.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return inventoryNotFound(item.SKU)
		}
		return shared.ErrConcurrencyConflict
	}

	item.Version = m.Version
	item.UpdatedAt = m.UpdatedAt
	return nil
}

// FindAdjustments returns the audit trail of a SKU, newest first
func (r *GormInventoryRepository) FindAdjustments(ctx context.Context, sku string, filter shared.Filter) ([]inventory.StockAdjustment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockAdjustmentModel{}).Where("sku = ?", sku)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StockAdjustmentModel
	if err := applySortAndPage(query, "", "created_at", "desc", map[string]bool{"created_at": true}, filter.Page, filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	adjustments := make([]inventory.StockAdjustment, len(rows))
	for i := range rows {
		adjustments[i] = rows[i].ToDomain()
	}
	return adjustments, total, nil
}

// Delete removes an item. Its audit trail is kept.
func (r *GormInventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InventoryItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return inventoryNotFound(id.String())
	}
	return nil
}

// Stats summarizes every stock row. Classification goes through
// inventory.ClassifyStock so it matches what the API reports per item.
func (r *GormInventoryRepository) Stats(ctx context.Context) (*inventory.Stats, error) {
	var rows []struct {
		CurrentStock int
		MinimumStock int
		CostPrice    decimal.Decimal
		SellingPrice decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Select("current_stock, minimum_stock, cost_price, selling_price").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	stats := &inventory.Stats{TotalCostValue: decimal.Zero, TotalRetailValue: decimal.Zero}
	for _, row := range rows {
		units := decimal.NewFromInt(int64(row.CurrentStock))
		stats.TotalItems++
		stats.TotalUnits += int64(row.CurrentStock)
		stats.TotalCostValue = stats.TotalCostValue.Add(row.CostPrice.Mul(units))
		stats.TotalRetailValue = stats.TotalRetailValue.Add(row.SellingPrice.Mul(units))

		switch inventory.ClassifyStock(row.CurrentStock, row.MinimumStock) {
		case inventory.StockStatusOutOfStock:
			stats.OutOfStock++
		case inventory.StockStatusLowStock:
			stats.LowStock++
		default:
			stats.InStock++
		}
	}
	return stats, nil
}

func (r *GormInventoryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"LOWER(inventory_items.sku) LIKE ? OR LOWER(products.name) LIKE ? OR LOWER(products.brand_name) LIKE ? "+
				"OR LOWER(inventory_items.supplier_name) LIKE ? OR LOWER(inventory_items.color) LIKE ? OR LOWER(inventory_items.shade) LIKE ?",
			pattern, pattern, pattern, pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "brand":
			term := fmt.Sprint(value)
			query = query.Where("LOWER(products.brand_name) LIKE ? OR CAST(products.brand_id AS TEXT) = ?", likePattern(term), term)
		case "category":
			term := fmt.Sprint(value)
			query = query.Where("LOWER(products.category_name) LIKE ? OR CAST(products.category_id AS TEXT) = ?", likePattern(term), term)
		case "location":
			query = query.Where("inventory_items.location = ?", value)
		case "low_stock_only":
			if on, ok := value.(bool); ok && on {
				query = query.Where("inventory_items.current_stock > 0 AND inventory_items.current_stock <= inventory_items.minimum_stock")
			}
		case "out_of_stock_only":
			if on, ok := value.(bool); ok && on {
				query = query.Where("inventory_items.current_stock <= 0")
			}
		}
	}
	return query
}

var _ inventory.Repository = (*GormInventoryRepository)(nil)
