package cache

import (
	"github.com/redis/go-redis/v9"
	"github.com/tbeauty/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis-backed store when a client is available
// and an in-memory one otherwise.
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if client != nil {
		logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(client, DefaultIdempotencyKeyPrefix)
	}
	logger.Warn("Redis disabled, using in-memory idempotency store; " +
		"duplicate deliveries across instances will not be detected")
	return NewInMemoryIdempotencyStore()
}
