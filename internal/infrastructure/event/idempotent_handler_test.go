package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func TestIdempotentHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("processes a new event once", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(MockEventHandler)
		event := newTestEvent("PaymentVerified")
		inner.On("Handle", mock.Anything, event).Return(nil).Once()

		h := NewIdempotentHandler("apply-payment", inner, store, zap.NewNop())
		require.NoError(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, event))

		inner.AssertExpectations(t)
		assert.Equal(t, IdempotencyStats{EventsProcessed: 1, EventsDuplicate: 1}, h.Metrics().Stats())

		processed, err := store.IsProcessed(ctx, "apply-payment:"+event.EventID().String())
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("claims are per handler name", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		event := newTestEvent("OrderConfirmed")
		first := new(MockEventHandler)
		first.On("Handle", mock.Anything, event).Return(nil).Once()
		second := new(MockEventHandler)
		second.On("Handle", mock.Anything, event).Return(nil).Once()

		require.NoError(t, NewIdempotentHandler("decrement-stock", first, store, nil).Handle(ctx, event))
		require.NoError(t, NewIdempotentHandler("audit", second, store, nil).Handle(ctx, event))

		first.AssertExpectations(t)
		second.AssertExpectations(t)
	})

	t.Run("failure releases the claim so a redelivery runs", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(MockEventHandler)
		event := newTestEvent("PaymentVerified")
		inner.On("Handle", mock.Anything, event).Return(errors.New("db down")).Once()
		inner.On("Handle", mock.Anything, event).Return(nil).Once()

		h := NewIdempotentHandler("apply-payment", inner, store, zap.NewNop())
		assert.EqualError(t, h.Handle(ctx, event), "db down")
		require.NoError(t, h.Handle(ctx, event))

		inner.AssertExpectations(t)
		assert.Equal(t, IdempotencyStats{EventsProcessed: 1, EventsFailed: 1}, h.Metrics().Stats())
	})

	t.Run("failure keeps the claim when release is disabled", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := new(MockEventHandler)
		event := newTestEvent("PaymentVerified")
		inner.On("Handle", mock.Anything, event).Return(errors.New("db down")).Once()

		cfg := shared.DefaultIdempotencyConfig()
		cfg.ReleaseOnFailure = false
		h := NewIdempotentHandler("apply-payment", inner, store, zap.NewNop(), WithIdempotencyConfig(cfg))

		assert.Error(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, event))

		inner.AssertExpectations(t)
		assert.Equal(t, int64(1), h.Metrics().Stats().EventsDuplicate)
	})

	t.Run("store error processes anyway", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		inner := new(MockEventHandler)
		event := newTestEvent("PaymentVerified")

		store.On("MarkProcessed", mock.Anything, "apply-payment:"+event.EventID().String(), 24*time.Hour).
			Return(false, errors.New("redis unavailable"))
		inner.On("Handle", mock.Anything, event).Return(nil)

		h := NewIdempotentHandler("apply-payment", inner, store, zap.NewNop())
		require.NoError(t, h.Handle(ctx, event))

		store.AssertExpectations(t)
		inner.AssertExpectations(t)
	})

	t.Run("disabled bypasses the store", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		inner := new(MockEventHandler)
		event := newTestEvent("PaymentVerified")
		inner.On("Handle", mock.Anything, event).Return(nil).Twice()

		h := NewIdempotentHandler("apply-payment", inner, store, zap.NewNop(),
			WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))
		require.NoError(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, event))

		inner.AssertExpectations(t)
		store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("shared metrics", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		metrics := &IdempotencyMetrics{}

		inner := new(MockEventHandler)
		inner.On("Handle", mock.Anything, mock.Anything).Return(nil)

		a := NewIdempotentHandler("a", inner, store, nil, WithIdempotencyMetrics(metrics))
		b := NewIdempotentHandler("b", inner, store, nil, WithIdempotencyMetrics(metrics))
		require.NoError(t, a.Handle(ctx, newTestEvent("X")))
		require.NoError(t, b.Handle(ctx, newTestEvent("X")))

		assert.Equal(t, int64(2), metrics.Stats().EventsProcessed)
	})
}

func TestIdempotentHandler_EventTypes(t *testing.T) {
	inner := new(MockEventHandler)
	inner.On("EventTypes").Return([]string{"PaymentVerified"})

	h := NewIdempotentHandler("apply-payment", inner, nil, nil)
	assert.Equal(t, []string{"PaymentVerified"}, h.EventTypes())
}
