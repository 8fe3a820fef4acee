package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const recordedType = "test.event.recorded"

func newBus(opts ...BusOption) *InMemoryEventBus {
	return NewInMemoryEventBus(zap.NewNop(), opts...)
}

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TransactionItem", uuid.New()),
		Data:            "charge succeeded",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := newBus()

	handler := newTestHandler(recordedType)
	bus.Subscribe(handler, recordedType)

	event := newTestEvent(recordedType)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_MultipleEvents(t *testing.T) {
	bus := newBus()

	handler := newTestHandler(recordedType)
	bus.Subscribe(handler, recordedType)

	event1 := newTestEvent(recordedType)
	event2 := newTestEvent(recordedType)
	err := bus.Publish(context.Background(), event1, event2)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_MultipleHandlers(t *testing.T) {
	bus := newBus()

	handler1 := newTestHandler(recordedType)
	handler2 := newTestHandler(recordedType)
	bus.Subscribe(handler1, recordedType)
	bus.Subscribe(handler2, recordedType)

	event := newTestEvent(recordedType)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := newBus()

	wildcardHandler := newTestHandler() // No event types = wildcard
	bus.Subscribe(wildcardHandler)

	event := newTestEvent("AnyEventType")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, wildcardHandler.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	bus := newBus()

	handler1 := newTestHandler(recordedType)
	handler1.setError(errors.New("handler error"))
	handler2 := newTestHandler(recordedType)
	bus.Subscribe(handler1, recordedType)
	bus.Subscribe(handler2, recordedType)

	event := newTestEvent(recordedType)
	err := bus.Publish(context.Background(), event)

	// Should not return error, but continue with other handlers
	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_NoMatchingHandlers(t *testing.T) {
	bus := newBus()

	handler := newTestHandler("catalog.product.updated")
	bus.Subscribe(handler, "catalog.product.updated")

	event := newTestEvent(recordedType)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 0)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := newBus()

	handler := newTestHandler(recordedType)
	bus.Subscribe(handler, recordedType)

	event1 := newTestEvent(recordedType)
	_ = bus.Publish(context.Background(), event1)
	assert.Len(t, handler.getHandled(), 1)

	bus.Unsubscribe(handler)

	event2 := newTestEvent(recordedType)
	_ = bus.Publish(context.Background(), event2)
	assert.Len(t, handler.getHandled(), 1) // Still 1, not 2
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := newBus()

	ctx := context.Background()
	err := bus.Start(ctx)
	require.NoError(t, err)

	// Can still publish after start
	handler := newTestHandler(recordedType)
	bus.Subscribe(handler, recordedType)
	event := newTestEvent(recordedType)
	err = bus.Publish(ctx, event)
	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = bus.Stop(ctx)
	require.NoError(t, err)
}

// deadlineRecorder notes whether Handle received a context with a deadline.
type deadlineRecorder struct {
	mu          sync.Mutex
	hadDeadline bool
}

func (h *deadlineRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, h.hadDeadline = ctx.Deadline()
	return nil
}

func (h *deadlineRecorder) EventTypes() []string {
	return []string{recordedType}
}

func TestInMemoryEventBus_HandlerTimeout(t *testing.T) {
	bus := newBus(WithHandlerTimeout(50 * time.Millisecond))

	rec := &deadlineRecorder{}
	bus.Subscribe(rec)

	err := bus.Publish(context.Background(), newTestEvent(recordedType))
	require.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.True(t, rec.hadDeadline)
}

func TestInMemoryEventBus_NoHandlerTimeoutByDefault(t *testing.T) {
	bus := newBus()

	rec := &deadlineRecorder{}
	bus.Subscribe(rec)

	err := bus.Publish(context.Background(), newTestEvent(recordedType))
	require.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.False(t, rec.hadDeadline)
}
