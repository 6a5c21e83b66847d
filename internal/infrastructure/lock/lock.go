// Package lock provides per-key mutual exclusion for order transitions and
// stock adjustments, in process or across instances through Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrLockTimeout is returned when a key stays held for longer than the
// configured wait. It is a concurrency conflict from the caller's view.
var ErrLockTimeout = shared.NewDomainError(shared.CodeConcurrentModification,
	"Resource is being modified by another request, try again")

// New returns the Locker selected by cfg.Backend. The redis backend needs a client.
func New(cfg config.LockConfig, client *redis.Client, logger *zap.Logger) (shared.Locker, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalLocker(cfg.Wait), nil
	case "redis":
		if client == nil {
			return nil, errors.New("redis lock backend requires a redis client")
		}
		return NewRedisLocker(client, cfg.TTL, cfg.Wait, logger), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.Backend)
	}
}

// waitContext bounds ctx by wait, when wait is positive
func waitContext(ctx context.Context, wait time.Duration) (context.Context, context.CancelFunc) {
	if wait <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, wait)
}

// acquireError maps a failed wait to ErrLockTimeout, unless the caller's own
// context ended first.
func acquireError(parent context.Context, key string) error {
	if err := parent.Err(); err != nil {
		return fmt.Errorf("acquire lock %s: %w", key, err)
	}
	return ErrLockTimeout
}
