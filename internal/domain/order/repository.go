package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its display number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll lists orders. Supported filter keys: status, payment_status, customer_id.
	// Search matches order number, customer name and customer email.
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter, ignoring pagination
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates an order with its items
	Save(ctx context.Context, order *Order) error

	// SaveWithLock updates an order if its stored version still matches,
	// otherwise returns shared.ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, order *Order) error

	// GenerateOrderNumber generates the next SO-YYYY-NNNNN number
	GenerateOrderNumber(ctx context.Context) (string, error)
}
