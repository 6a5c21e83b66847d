package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimiter(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredisClient(t)
	limiter := NewRedisRateLimiter(client, 2, time.Minute)

	allowed, remaining, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, time.Minute, mr.TTL(DefaultRateLimitKeyPrefix+"10.0.0.1"))

	allowed, remaining, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, _, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed, "keys are counted separately")

	mr.FastForward(time.Minute)
	allowed, _, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed, "a new window starts after expiry")
}

func TestRedisRateLimiter_Unavailable(t *testing.T) {
	mr, client := newMiniredisClient(t)
	limiter := NewRedisRateLimiter(client, 2, time.Minute)
	mr.Close()

	_, _, err := limiter.Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
}
