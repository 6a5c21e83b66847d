package persistence

import (
	"strings"

	"github.com/tbeauty/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"customer_name":  true,
	"status":         true,
	"payment_status": true,
	"confirmed_at":   true,
}

// InventorySortFields contains allowed sort fields for inventory rows
var InventorySortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"sku":           true,
	"product_id":    true,
	"location":      true,
	"current_stock": true,
	"minimum_stock": true,
	"cost_price":    true,
	"selling_price": true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"created_at":        true,
	"payment_date":      true,
	"payment_reference": true,
	"amount":            true,
	"payment_method":    true,
	"verification_date": true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"created_at":     true,
	"invoice_number": true,
	"due_date":       true,
	"status":         true,
	"total_amount":   true,
}

// applySortAndPage orders and paginates a list query. table qualifies the
// sort column when the query joins other tables.
func applySortAndPage(query *gorm.DB, table string, orderBy, orderDir string, allowed map[string]bool, page, pageSize int) *gorm.DB {
	field := ValidateSortField(orderBy, allowed, "created_at")
	if table != "" {
		field = table + "." + field
	}
	query = query.Order(field + " " + ValidateSortOrder(orderDir))

	if page > 0 && pageSize > 0 {
		pageSize = min(pageSize, shared.MaxPageSize)
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	return query
}

// likePattern builds a case-insensitive LIKE pattern for LOWER(column) LIKE ?
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
