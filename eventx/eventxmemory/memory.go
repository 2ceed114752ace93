// Package eventxmemory is an in-process eventx bus. Each published event is
// handled on its own goroutine; Close waits for those goroutines to finish.
package eventxmemory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/eventx"
	"github.com/maachbazar/whatsapp-agent/logx"
)

// Bus dispatches events to local handlers in detached goroutines
type Bus struct {
	handlers *eventx.Handlers
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	inFlight atomic.Int64
}

var _ eventx.EventBus = (*Bus)(nil)

// New creates an in-memory bus
func New() *Bus {
	return &Bus{handlers: eventx.NewHandlers()}
}

func (b *Bus) Subscribe(_ context.Context, eventType string, handler eventx.EventHandler) error {
	b.handlers.Add(eventType, handler)
	return nil
}

func (b *Bus) HandlerCount(eventType string) int {
	return b.handlers.Count(eventType)
}

// InFlight reports events still being handled
func (b *Bus) InFlight() int64 {
	return b.inFlight.Load()
}

// Publish starts handling the event and returns immediately. The handler
// context is detached from ctx so request cancellation does not abort it.
func (b *Bus) Publish(ctx context.Context, event eventx.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return eventx.ErrorRegistry.New(eventx.ErrBusClosed).WithDetail("event_id", event.ID())
	}

	if b.handlers.Count(event.Type()) == 0 {
		return eventx.ErrorRegistry.New(eventx.ErrNoHandler).
			WithDetail("event_type", event.Type()).
			WithDetail("event_id", event.ID())
	}

	b.wg.Add(1)
	b.inFlight.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.inFlight.Add(-1)

		if err := b.handlers.Dispatch(context.WithoutCancel(ctx), event); err != nil {
			logx.Error("Event %s (%s) failed: %s", event.ID(), event.Type(), errx.Print(err))
		}
	}()
	return nil
}

// Close rejects new events and waits for in-flight handlers or ctx
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
