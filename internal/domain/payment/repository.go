package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Repository defines the interface for payment persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByReference(ctx context.Context, reference string) (*Payment, error)

	// FindAll lists payments. Supported filter keys: payment_method,
	// is_verified, order_id, date_from, date_to. Search matches the reference,
	// transaction reference and notes.
	FindAll(ctx context.Context, filter shared.Filter) ([]Payment, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock updates a payment if its stored version still matches
	SaveWithLock(ctx context.Context, payment *Payment) error

	// GenerateReference generates the next PAY-YYYY-NNNNN reference
	GenerateReference(ctx context.Context) (string, error)
}
