package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tbeauty/backend/internal/domain/invoice"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var errInvoiceNotFound = shared.NewDomainError(shared.CodeNotFound, "Invoice not found")

// GormInvoiceRepository implements invoice.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("invoice_items.position ASC")
	})
}

// FindByID finds an invoice with its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	var m models.InvoiceModel
	if err := r.withItems(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvoiceNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByPaymentID finds the invoice derived from a payment
func (r *GormInvoiceRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*invoice.Invoice, error) {
	var m models.InvoiceModel
	if err := r.withItems(ctx).Where("payment_id = ?", paymentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvoiceNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoice.Invoice, error) {
	query := r.applyFilter(r.withItems(ctx).Model(&models.InvoiceModel{}), filter)
	query = applySortAndPage(query, "", filter.OrderBy, filter.OrderDir, InvoiceSortFields, filter.Page, filter.PageSize)

	var rows []models.InvoiceModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	invoices := make([]invoice.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new invoice with its lines
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	m := models.InvoiceModelFromDomain(inv)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(m).Error; err != nil {
			return err
		}
		for i := range m.Items {
			if err := tx.Save(&m.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock persists status changes under the version check. Lines and
// totals are never rewritten.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	version := inv.Version + 1
	updatedAt := time.Now()

	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version).
		Updates(map[string]interface{}{
			"status":       string(inv.Status),
			"amount_paid":  inv.AmountPaid,
			"snapshot_key": inv.SnapshotKey,
			"sent_at":      inv.SentAt,
			"paid_at":      inv.PaidAt,
			"version":      version,
			"updated_at":   updatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	inv.Version = version
	inv.UpdatedAt = updatedAt
	return nil
}

// GenerateInvoiceNumber returns the next invoice number.
// Format: INV-YYYY-NNNNN
func (r *GormInvoiceRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	return nextYearlyNumber(ctx, r.db, models.InvoiceModel{}.TableName(), "invoice_number", "INV")
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(invoice_number) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		}
	}
	return query
}

var _ invoice.Repository = (*GormInvoiceRepository)(nil)
