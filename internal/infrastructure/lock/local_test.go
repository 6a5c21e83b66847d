package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbeauty/backend/internal/domain/shared"
)

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	locker := NewLocalLocker(0)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		inside  atomic.Int32
		maxSeen atomic.Int32
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "sku:TB-00001-MW")
			require.NoError(t, err)
			defer release()

			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			counter++
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Equal(t, 50, counter)
	assert.Zero(t, locker.held())
}

func TestLocalLocker_DifferentKeysDoNotBlock(t *testing.T) {
	locker := NewLocalLocker(time.Second)
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "order:a")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := locker.Acquire(ctx, "order:b")
	require.NoError(t, err)
	releaseB()
}

func TestLocalLocker_WaitTimeout(t *testing.T) {
	locker := NewLocalLocker(20 * time.Millisecond)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "order:1")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "order:1")
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	release()
	release()

	again, err := locker.Acquire(ctx, "order:1")
	require.NoError(t, err)
	again()
	assert.Zero(t, locker.held())
}

func TestLocalLocker_CallerContextCancelled(t *testing.T) {
	locker := NewLocalLocker(0)

	release, err := locker.Acquire(context.Background(), "order:1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = locker.Acquire(ctx, "order:1")
	assert.True(t, errors.Is(err, context.Canceled))
}
