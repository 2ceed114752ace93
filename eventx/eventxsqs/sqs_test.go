package eventxsqs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/eventx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueue is an in-memory stand-in for the SQS API
type fakeQueue struct {
	mu       sync.Mutex
	pending  []types.Message
	deleted  []string
	sent     []*sqs.SendMessageInput
	sendErr  error
	seq      int
	received chan struct{}
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{received: make(chan struct{}, 100)}
}

func (f *fakeQueue) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.seq++
	id := string(rune('a' + f.seq))
	f.sent = append(f.sent, in)
	f.pending = append(f.pending, types.Message{
		MessageId:     aws.String(id),
		ReceiptHandle: aws.String("rh-" + id),
		Body:          in.MessageBody,
	})
	return &sqs.SendMessageOutput{MessageId: aws.String(id)}, nil
}

func (f *fakeQueue) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	n := int(in.MaxNumberOfMessages)
	if n > len(f.pending) {
		n = len(f.pending)
	}
	batch := append([]types.Message(nil), f.pending[:n]...)
	f.pending = f.pending[n:]
	f.mu.Unlock()

	if len(batch) == 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (f *fakeQueue) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	f.mu.Unlock()
	f.received <- struct{}{}
	return &sqs.DeleteMessageOutput{}, nil
}

type payload struct {
	Text string `json:"text"`
}

func TestPublishSendsSerializedEvent(t *testing.T) {
	q := newFakeQueue()
	bus := New(q, Config{QueueURL: "https://sqs.local/q"})

	require.NoError(t, bus.Publish(context.Background(), eventx.NewEvent("greeting", payload{Text: "hi"})))

	require.Len(t, q.sent, 1)
	in := q.sent[0]
	assert.Equal(t, "https://sqs.local/q", aws.ToString(in.QueueUrl))
	assert.Equal(t, "greeting", aws.ToString(in.MessageAttributes["event_type"].StringValue))
	assert.Contains(t, aws.ToString(in.MessageBody), `"text":"hi"`)
}

func TestPublishFailure(t *testing.T) {
	q := newFakeQueue()
	q.sendErr = errors.New("throttled")
	bus := New(q, Config{QueueURL: "q"})

	err := bus.Publish(context.Background(), eventx.NewEvent("greeting", payload{}))
	assert.True(t, errx.IsCode(err, eventx.ErrPublishFailed))
}

func TestPollRoundTrip(t *testing.T) {
	q := newFakeQueue()
	bus := New(q, Config{QueueURL: "q"})

	got := make(chan string, 1)
	require.NoError(t, eventx.SubscribeTyped(bus, context.Background(), "greeting", func(_ context.Context, e eventx.TypedEvent[payload]) error {
		got <- e.Data().Text
		return nil
	}))
	require.NoError(t, bus.Publish(context.Background(), eventx.NewEvent("greeting", payload{Text: "namaste"})))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = bus.Poll(ctx)
		close(done)
	}()

	select {
	case text := <-got:
		assert.Equal(t, "namaste", text)
	case <-time.After(time.Second):
		t.Fatal("event not handled")
	}
	<-q.received
	cancel()
	<-done

	assert.Len(t, q.deleted, 1)
}

func TestHandleReportsOnlyDecodeErrors(t *testing.T) {
	bus := New(newFakeQueue(), Config{QueueURL: "q"})
	require.NoError(t, bus.Subscribe(context.Background(), "greeting", func(context.Context, eventx.Event) error {
		return errors.New("handler failed")
	}))

	body, err := eventx.ToJSON(eventx.NewEvent("greeting", payload{Text: "hi"}))
	require.NoError(t, err)

	assert.NoError(t, bus.Handle(context.Background(), string(body)))
	assert.True(t, errx.IsCode(bus.Handle(context.Background(), "{broken"), eventx.ErrSerializationFailed))
}

func TestCloseRejectsPublish(t *testing.T) {
	bus := New(newFakeQueue(), Config{QueueURL: "q"})
	require.NoError(t, bus.Close(context.Background()))
	err := bus.Publish(context.Background(), eventx.NewEvent("greeting", payload{}))
	assert.True(t, errx.IsCode(err, eventx.ErrBusClosed))
}

func TestConfigDefaults(t *testing.T) {
	bus := New(newFakeQueue(), Config{QueueURL: "q", MaxMessages: 50})
	assert.Equal(t, int32(10), bus.cfg.MaxMessages)
	assert.Equal(t, int32(20), bus.cfg.WaitTimeSeconds)
}

func TestNewFromEnvRequiresQueue(t *testing.T) {
	_, err := NewFromEnv(context.Background(), Config{})
	assert.True(t, errx.IsCode(err, eventx.ErrConnectionFailed))
}
