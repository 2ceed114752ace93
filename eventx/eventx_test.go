package eventx

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type delivery struct {
	ID   string          `json:"id"`
	Body json.RawMessage `json:"body"`
}

// syncBus dispatches inline, enough to exercise SubscribeTyped
type syncBus struct {
	*Handlers
}

func (b syncBus) Subscribe(_ context.Context, t string, h EventHandler) error {
	b.Add(t, h)
	return nil
}
func (b syncBus) Publish(ctx context.Context, e Event) error { return b.Dispatch(ctx, e) }
func (b syncBus) HandlerCount(t string) int                  { return b.Count(t) }
func (b syncBus) Close(context.Context) error                { return nil }

func TestNewEventDefaults(t *testing.T) {
	e := NewEvent("whatsapp.delivery", delivery{ID: "d1"})
	_, err := uuid.Parse(e.ID())
	assert.NoError(t, err)
	assert.Equal(t, "whatsapp.delivery", e.Type())
	assert.Equal(t, "waagent", e.Source())
	assert.Equal(t, "1.0", e.Version())
	assert.Equal(t, "d1", e.Data().ID)
	assert.NotNil(t, e.Metadata())
}

func TestNewEventUsesGivenID(t *testing.T) {
	e := NewEvent("x", 1, EventOptions{ID: "fixed", Source: "webhook"})
	assert.Equal(t, "fixed", e.ID())
	assert.Equal(t, "webhook", e.Source())
	assert.Equal(t, "1.0", e.Version())
}

func TestJSONRoundTripThroughTypedHandler(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	original := NewEventWithID("evt-1", "whatsapp.delivery", delivery{ID: "d1", Body: json.RawMessage(`{"object":"whatsapp_business_account"}`)}, ts)

	data, err := ToJSON(original)
	require.NoError(t, err)

	decoded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", decoded.ID())
	assert.True(t, ts.Equal(decoded.Timestamp()))

	bus := syncBus{NewHandlers()}
	var got delivery
	require.NoError(t, SubscribeTyped(bus, context.Background(), "whatsapp.delivery", func(_ context.Context, e TypedEvent[delivery]) error {
		got = e.Data()
		assert.Equal(t, "evt-1", e.ID())
		return nil
	}))
	require.NoError(t, bus.Publish(context.Background(), decoded))
	assert.Equal(t, "d1", got.ID)
	assert.JSONEq(t, `{"object":"whatsapp_business_account"}`, string(got.Body))
}

func TestFromJSONTyped(t *testing.T) {
	data, err := ToJSON(NewEvent("x", delivery{ID: "d2"}))
	require.NoError(t, err)

	e, err := FromJSONTyped[delivery](data)
	require.NoError(t, err)
	assert.Equal(t, "d2", e.Data().ID)
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	_, err := FromJSON([]byte("nope"))
	assert.True(t, errx.IsCode(err, ErrSerializationFailed))

	_, err = FromJSON([]byte(`{"id":"x"}`))
	assert.True(t, errx.IsCode(err, ErrSerializationFailed))
}

func TestSubscribeTypedRejectsMismatchedPayload(t *testing.T) {
	bus := syncBus{NewHandlers()}
	require.NoError(t, SubscribeTyped(bus, context.Background(), "x", func(context.Context, TypedEvent[delivery]) error {
		t.Fatal("should not be called")
		return nil
	}))
	err := bus.Publish(context.Background(), NewEvent("x", 42))
	assert.True(t, errx.IsCode(err, ErrInvalidEventType))
}

func TestDispatchRunsAllHandlersAndRecovers(t *testing.T) {
	h := NewHandlers()
	calls := 0
	h.Add("x", func(context.Context, Event) error { panic("bad") })
	h.Add("x", func(context.Context, Event) error { calls++; return errors.New("second") })

	err := h.Dispatch(context.Background(), NewEvent("x", 1))
	assert.True(t, errx.IsCode(err, ErrHandlerPanic))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"x"}, h.Types())

	err = h.Dispatch(context.Background(), NewEvent("y", 1))
	assert.True(t, errx.IsCode(err, ErrNoHandler))
}
