package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbeauty/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", uuid.New(), "user-1"),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	err, p := h.err, h.panicWith
	h.mu.Unlock()
	if p != nil {
		panic(p)
	}
	return err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to subscribed handler in order", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newTestHandler("OrderConfirmed")
		bus.Subscribe(handler)

		first := newTestEvent("OrderConfirmed")
		second := newTestEvent("OrderConfirmed")
		require.NoError(t, bus.Publish(ctx, first, second))

		assert.Equal(t, []shared.DomainEvent{first, second}, handler.getHandled())
	})

	t.Run("explicit types override handler types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newTestHandler("OrderConfirmed")
		bus.Subscribe(handler, "OrderCancelled")

		require.NoError(t, bus.Publish(ctx, newTestEvent("OrderConfirmed"), newTestEvent("OrderCancelled")))
		require.Len(t, handler.getHandled(), 1)
		assert.Equal(t, "OrderCancelled", handler.getHandled()[0].EventType())
	})

	t.Run("wildcard handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newTestHandler()
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(ctx, newTestEvent("AnyEvent")))
		assert.Len(t, handler.getHandled(), 1)
	})

	t.Run("failing handler does not stop the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := newTestHandler("OrderConfirmed")
		failing.err = errors.New("boom")
		panicking := newTestHandler("OrderConfirmed")
		panicking.panicWith = "kaboom"
		healthy := newTestHandler("OrderConfirmed")
		bus.Subscribe(failing)
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newTestEvent("OrderConfirmed")))
		assert.Len(t, failing.getHandled(), 1)
		assert.Len(t, panicking.getHandled(), 1)
		assert.Len(t, healthy.getHandled(), 1)
	})

	t.Run("no matching handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newTestHandler("OtherEvent")
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(ctx, newTestEvent("OrderConfirmed")))
		assert.Empty(t, handler.getHandled())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("OrderConfirmed")
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderConfirmed")))
	bus.Unsubscribe(handler)
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderConfirmed")))

	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("OrderConfirmed")
	bus.Subscribe(handler)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, bus.Stop(ctx))
	assert.Error(t, bus.Publish(ctx, newTestEvent("OrderConfirmed")))
	assert.Empty(t, handler.getHandled())

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderConfirmed")))
	assert.Len(t, handler.getHandled(), 1)
}

type recordingAggregate struct {
	shared.BaseAggregateRoot
}

func TestPublishPending(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler()
	bus.Subscribe(handler)

	agg := &recordingAggregate{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	agg.AddDomainEvent(newTestEvent("OrderCreated"))
	agg.AddDomainEvent(newTestEvent("OrderConfirmed"))

	require.NoError(t, PublishPending(ctx, bus, agg))
	assert.Len(t, handler.getHandled(), 2)
	assert.Empty(t, agg.GetDomainEvents())

	require.NoError(t, PublishPending(ctx, bus, agg))
	assert.Len(t, handler.getHandled(), 2)
}
