package eventxmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/eventx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	ID string `json:"id"`
}

func TestPublishDoesNotWaitForHandler(t *testing.T) {
	bus := New()
	release := make(chan struct{})
	var handled atomic.Int32

	require.NoError(t, eventx.SubscribeTyped(bus, context.Background(), "order.placed", func(_ context.Context, e eventx.TypedEvent[order]) error {
		<-release
		assert.Equal(t, "ORD123", e.Data().ID)
		handled.Add(1)
		return nil
	}))

	require.NoError(t, bus.Publish(context.Background(), eventx.NewEvent("order.placed", order{ID: "ORD123"})))
	assert.Equal(t, int32(0), handled.Load())
	assert.Equal(t, int64(1), bus.InFlight())

	close(release)
	require.NoError(t, bus.Close(context.Background()))
	assert.Equal(t, int32(1), handled.Load())
	assert.Equal(t, int64(0), bus.InFlight())
}

func TestHandlerOutlivesRequestContext(t *testing.T) {
	bus := New()
	done := make(chan error, 1)
	require.NoError(t, bus.Subscribe(context.Background(), "x", func(ctx context.Context, _ eventx.Event) error {
		time.Sleep(20 * time.Millisecond)
		done <- ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, eventx.NewEvent("x", 1)))
	cancel()

	assert.NoError(t, <-done)
}

func TestPanicsAndErrorsAreContained(t *testing.T) {
	bus := New()
	var ran atomic.Int32
	require.NoError(t, bus.Subscribe(context.Background(), "x", func(context.Context, eventx.Event) error {
		panic("boom")
	}))
	require.NoError(t, bus.Subscribe(context.Background(), "x", func(context.Context, eventx.Event) error {
		ran.Add(1)
		return errors.New("failed")
	}))

	require.NoError(t, bus.Publish(context.Background(), eventx.NewEvent("x", 1)))
	require.NoError(t, bus.Close(context.Background()))
	assert.Equal(t, int32(1), ran.Load())
}

func TestPublishWithoutHandler(t *testing.T) {
	bus := New()
	err := bus.Publish(context.Background(), eventx.NewEvent("nobody", 1))
	assert.True(t, errx.IsCode(err, eventx.ErrNoHandler))
}

func TestPublishAfterClose(t *testing.T) {
	bus := New()
	require.NoError(t, bus.Subscribe(context.Background(), "x", func(context.Context, eventx.Event) error { return nil }))
	require.NoError(t, bus.Close(context.Background()))

	err := bus.Publish(context.Background(), eventx.NewEvent("x", 1))
	assert.True(t, errx.IsCode(err, eventx.ErrBusClosed))
}

func TestCloseHonoursDeadline(t *testing.T) {
	bus := New()
	block := make(chan struct{})
	defer close(block)
	require.NoError(t, bus.Subscribe(context.Background(), "x", func(context.Context, eventx.Event) error {
		<-block
		return nil
	}))
	require.NoError(t, bus.Publish(context.Background(), eventx.NewEvent("x", 1)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Close(ctx), context.DeadlineExceeded)
}
