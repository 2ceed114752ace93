// Package eventx carries events from producers to handlers over pluggable
// buses: in process (eventxmemory), AWS SQS (eventxsqs) and RabbitMQ
// (eventxamqp).
//
//	bus := eventxmemory.New()
//	eventx.SubscribeTyped(bus, ctx, "whatsapp.delivery", func(ctx context.Context, e eventx.TypedEvent[msgx.Delivery]) error {
//		return processor.HandleDelivery(ctx, e.Data())
//	})
//	bus.Publish(ctx, eventx.NewEvent("whatsapp.delivery", delivery))
package eventx

import (
	"time"

	"github.com/google/uuid"
)

// Event is the base interface for all events
type Event interface {
	ID() string
	Type() string
	Timestamp() time.Time
	Source() string
	Version() string
	Payload() any
	Metadata() map[string]any
}

// TypedEvent provides type-safe access to event data
type TypedEvent[T any] interface {
	Event
	Data() T
}

// EventOptions configure event creation
type EventOptions struct {
	ID       string
	Source   string
	Version  string
	Metadata map[string]any
}

// DefaultEventOptions returns default options
func DefaultEventOptions() EventOptions {
	return EventOptions{
		Source:   "waagent",
		Version:  "1.0",
		Metadata: make(map[string]any),
	}
}

// BaseEvent implements TypedEvent for any payload
type BaseEvent[T any] struct {
	id        string
	eventType string
	timestamp time.Time
	source    string
	version   string
	data      T
	metadata  map[string]any
}

// NewEvent creates a new typed event. A blank options ID gets a fresh UUID.
func NewEvent[T any](eventType string, data T, opts ...EventOptions) TypedEvent[T] {
	return NewEventWithID("", eventType, data, time.Now().UTC(), opts...)
}

// NewEventWithID rebuilds an event with a known identity, e.g. after decoding
func NewEventWithID[T any](id, eventType string, data T, timestamp time.Time, opts ...EventOptions) TypedEvent[T] {
	options := DefaultEventOptions()
	if len(opts) > 0 {
		o := opts[0]
		if o.ID != "" {
			options.ID = o.ID
		}
		if o.Source != "" {
			options.Source = o.Source
		}
		if o.Version != "" {
			options.Version = o.Version
		}
		if o.Metadata != nil {
			options.Metadata = o.Metadata
		}
	}
	if id == "" {
		id = options.ID
	}
	if id == "" {
		id = uuid.NewString()
	}

	return &BaseEvent[T]{
		id:        id,
		eventType: eventType,
		timestamp: timestamp,
		source:    options.Source,
		version:   options.Version,
		data:      data,
		metadata:  options.Metadata,
	}
}

func (e *BaseEvent[T]) ID() string               { return e.id }
func (e *BaseEvent[T]) Type() string             { return e.eventType }
func (e *BaseEvent[T]) Timestamp() time.Time     { return e.timestamp }
func (e *BaseEvent[T]) Source() string           { return e.source }
func (e *BaseEvent[T]) Version() string          { return e.version }
func (e *BaseEvent[T]) Payload() any             { return e.data }
func (e *BaseEvent[T]) Metadata() map[string]any { return e.metadata }
func (e *BaseEvent[T]) Data() T                  { return e.data }

// SetMetadata adds or updates metadata
func (e *BaseEvent[T]) SetMetadata(key string, value any) {
	e.metadata[key] = value
}
