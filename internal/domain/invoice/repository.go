package invoice

import (
	"context"

	"github.com/google/uuid"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Repository defines the interface for invoice persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*Invoice, error)

	// FindAll lists invoices. Supported filter keys: status, customer_id,
	// order_id. Search matches the invoice number and description.
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock persists status, amount paid and snapshot key under a version check
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// GenerateInvoiceNumber generates the next INV-YYYY-NNNNN number
	GenerateInvoiceNumber(ctx context.Context) (string, error)
}
