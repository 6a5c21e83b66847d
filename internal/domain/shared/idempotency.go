package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which (handler, event) keys have been processed
type IdempotencyStore interface {
	// MarkProcessed atomically claims key for ttl.
	// Returns true if the key was newly claimed, false if it was already held.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if key is currently claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release drops a claim so the event can be processed again
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a processed key is remembered. Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled. Default: true
	Enabled bool

	// ReleaseOnFailure drops the claim when the handler fails, so that a
	// redelivery of the same event is processed. Default: true
	ReleaseOnFailure bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:              24 * time.Hour,
		Enabled:          true,
		ReleaseOnFailure: true,
	}
}
