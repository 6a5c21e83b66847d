package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tbeauty/backend/internal/domain/order"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var errOrderNotFound = shared.NewDomainError(shared.CodeNotFound, "Order not found")

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.created_at ASC")
	})
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var m models.OrderModel
	if err := r.withItems(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errOrderNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByOrderNumber finds an order by its number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var m models.OrderModel
	if err := r.withItems(ctx).Where("order_number = ?", orderNumber).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errOrderNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists orders matching the filter, newest first by default
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	query := r.applyFilter(r.withItems(ctx).Model(&models.OrderModel{}), filter)
	query = applySortAndPage(query, "", filter.OrderBy, filter.OrderDir, OrderSortFields, filter.Page, filter.PageSize)

	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts or overwrites an order and its items without a version check
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	m := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(m).Error; err != nil {
			return err
		}
		return saveOrderItems(tx, m)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current struct{ Version int }
		if err := tx.Model(&models.OrderModel{}).
			Select("version").
			Where("id = ?", o.ID).
			Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errOrderNotFound
			}
			return err
		}
		if current.Version != o.Version {
			return shared.ErrConcurrencyConflict
		}

		m := models.OrderModelFromDomain(o)
		m.Version = o.Version + 1
		m.UpdatedAt = time.Now()

		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", o.ID, current.Version).
			Updates(map[string]interface{}{
				"customer_name":    m.CustomerName,
				"customer_email":   m.CustomerEmail,
				"status":           m.Status,
				"payment_status":   m.PaymentStatus,
				"delivery_method":  m.DeliveryMethod,
				"delivery_address": m.DeliveryAddress,
				"notes":            m.Notes,
				"discount_amount":  m.DiscountAmount,
				"tax_amount":       m.TaxAmount,
				"shipping_cost":    m.ShippingCost,
				"amount_paid":      m.AmountPaid,
				"cancel_reason":    m.CancelReason,
				"confirmed_at":     m.ConfirmedAt,
				"processed_at":     m.ProcessedAt,
				"shipped_at":       m.ShippedAt,
				"delivered_at":     m.DeliveredAt,
				"cancelled_at":     m.CancelledAt,
				"version":          m.Version,
				"updated_at":       m.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if err := saveOrderItems(tx, m); err != nil {
			return err
		}
		o.Version = m.Version
		o.UpdatedAt = m.UpdatedAt
		return nil
	})
}

func saveOrderItems(tx *gorm.DB, m *models.OrderModel) error {
	for i := range m.Items {
		if err := tx.Save(&m.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// GenerateOrderNumber returns the next order number.
// Format: SO-YYYY-NNNNN (e.g., SO-2026-00001)
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	return nextYearlyNumber(ctx, r.db, models.OrderModel{}.TableName(), "order_number", "SO")
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?",
			pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "order_source":
			query = query.Where("order_source = ?", value)
		}
	}
	return query
}

var _ order.Repository = (*GormOrderRepository)(nil)
