package eventx

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// EventHandler is a function that processes events
type EventHandler func(ctx context.Context, event Event) error

// TypedEventHandler provides type-safe event handling
type TypedEventHandler[T any] func(ctx context.Context, event TypedEvent[T]) error

// EventBus defines the interface for event bus implementations
type EventBus interface {
	// Subscribe registers an event handler for a specific event type
	Subscribe(ctx context.Context, eventType string, handler EventHandler) error

	// Publish hands an event to the bus. It does not wait for handlers.
	Publish(ctx context.Context, event Event) error

	// HandlerCount returns the number of handlers for an event type
	HandlerCount(eventType string) int

	// Close stops accepting events and waits for in-flight work or ctx
	Close(ctx context.Context) error
}

// Handlers is the subscription table shared by bus implementations
type Handlers struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

// NewHandlers creates an empty subscription table
func NewHandlers() *Handlers {
	return &Handlers{handlers: make(map[string][]EventHandler)}
}

// Add subscribes handler to eventType
func (h *Handlers) Add(eventType string, handler EventHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[eventType] = append(h.handlers[eventType], handler)
}

// Count returns the number of handlers for eventType
func (h *Handlers) Count(eventType string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers[eventType])
}

// Types lists subscribed event types
func (h *Handlers) Types() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	types := make([]string, 0, len(h.handlers))
	for t := range h.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Dispatch runs every handler for the event in order. A panicking handler is
// converted to ErrHandlerPanic. The first error is returned after all
// handlers ran.
func (h *Handlers) Dispatch(ctx context.Context, event Event) error {
	h.mu.RLock()
	handlers := append([]EventHandler(nil), h.handlers[event.Type()]...)
	h.mu.RUnlock()

	if len(handlers) == 0 {
		return ErrorRegistry.New(ErrNoHandler).
			WithDetail("event_type", event.Type()).
			WithDetail("event_id", event.ID())
	}

	var first error
	for _, handler := range handlers {
		if err := safeCall(ctx, handler, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func safeCall(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrorRegistry.New(ErrHandlerPanic).
				WithDetail("event_type", event.Type()).
				WithDetail("event_id", event.ID()).
				WithDetail("panic", fmt.Sprint(r))
		}
	}()
	return handler(ctx, event)
}

// SubscribeTyped registers a typed event handler. Events decoded from a
// transport carry raw JSON and are unmarshalled into T here.
func SubscribeTyped[T any](bus EventBus, ctx context.Context, eventType string, handler TypedEventHandler[T]) error {
	return bus.Subscribe(ctx, eventType, func(ctx context.Context, e Event) error {
		if typed, ok := e.(TypedEvent[T]); ok {
			return handler(ctx, typed)
		}

		raw, ok := e.Payload().(json.RawMessage)
		if !ok {
			return ErrorRegistry.New(ErrInvalidEventType).
				WithDetail("expected_type", reflect.TypeOf((*T)(nil)).Elem().String()).
				WithDetail("actual_type", fmt.Sprintf("%T", e.Payload()))
		}

		var data T
		if err := json.Unmarshal(raw, &data); err != nil {
			return ErrorRegistry.NewWithCause(ErrSerializationFailed, err).
				WithDetail("event_id", e.ID()).
				WithDetail("event_type", e.Type())
		}
		return handler(ctx, NewEventWithID(e.ID(), e.Type(), data, e.Timestamp(), EventOptions{
			Source:   e.Source(),
			Version:  e.Version(),
			Metadata: e.Metadata(),
		}))
	})
}
