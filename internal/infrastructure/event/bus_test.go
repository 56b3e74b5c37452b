package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erp/analytics/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), uuid.New()),
	}
}

type testHandler struct {
	eventTypes []string
	err        error
	panicMsg   string
	delay      time.Duration

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus()
	handler := newTestHandler("SaleRecorded")
	bus.Subscribe(handler)

	event := newTestEvent("SaleRecorded")
	require.NoError(t, bus.Publish(context.Background(), event, newTestEvent("SaleRecorded")))

	assert.Equal(t, 2, handler.count())
	assert.Equal(t, event, handler.handled[0])
}

func TestInMemoryEventBus_WildcardAndFiltering(t *testing.T) {
	bus := NewInMemoryEventBus()
	typed := newTestHandler("SaleRecorded")
	wildcard := newTestHandler()
	bus.Subscribe(typed)
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("Other")))

	assert.Equal(t, 0, typed.count())
	assert.Equal(t, 1, wildcard.count())
}

func TestInMemoryEventBus_HandlerErrorAndPanicAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(WithLogger(zap.New(core)))

	failing := newTestHandler("SaleRecorded")
	failing.err = errors.New("boom")
	panicking := newTestHandler("SaleRecorded")
	panicking.panicMsg = "kaboom"
	healthy := newTestHandler("SaleRecorded")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleRecorded")))

	assert.Equal(t, 1, healthy.count())
	entries := logs.FilterMessage("Event handler failed").All()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[1].ContextMap()["error"], "handler panicked: kaboom")
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus()
	handler := newTestHandler("SaleRecorded")
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent("SaleRecorded"))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("SaleRecorded"))

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_AsyncStopWaitsForHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(WithAsyncDispatch())
	require.NoError(t, bus.Start(context.Background()))

	handler := newTestHandler("SaleRecorded")
	handler.delay = 20 * time.Millisecond
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleRecorded")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	assert.Equal(t, 1, handler.count())

	assert.ErrorIs(t, bus.Publish(context.Background(), newTestEvent("SaleRecorded")), ErrBusStopped)
}

func TestInMemoryEventBus_StopTimeout(t *testing.T) {
	bus := NewInMemoryEventBus(WithAsyncDispatch())
	handler := newTestHandler("SaleRecorded")
	handler.delay = 200 * time.Millisecond
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleRecorded")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Stop(ctx), context.DeadlineExceeded)
}
