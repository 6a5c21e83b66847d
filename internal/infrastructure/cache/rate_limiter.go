package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRateLimitKeyPrefix namespaces rate limit counters in Redis
const DefaultRateLimitKeyPrefix = "tbeauty:ratelimit:"

// RedisRateLimiter is a fixed-window limiter shared by every instance of
// the service. The window starts with the first request of a key.
type RedisRateLimiter struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	period    time.Duration
}

// NewRedisRateLimiter allows limit requests per key every period
func NewRedisRateLimiter(client *redis.Client, limit int, period time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		keyPrefix: DefaultRateLimitKeyPrefix,
		limit:     limit,
		period:    period,
	}
}

// Limit returns the requests allowed per window
func (l *RedisRateLimiter) Limit() int { return l.limit }

// Allow increments the key's counter and arms its expiry on first use
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	redisKey := l.keyPrefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.period)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := int(incr.Val())
	if count > l.limit {
		return false, 0, nil
	}
	return true, l.limit - count, nil
}
