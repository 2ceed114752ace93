// Package eventxsqs carries eventx events through an AWS SQS queue.
package eventxsqs

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/eventx"
	"github.com/maachbazar/whatsapp-agent/logx"
)

const eventTypeAttribute = "event_type"

// API is the subset of *sqs.Client the bus uses
type API interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Config selects the queue and polling behaviour
type Config struct {
	QueueURL          string
	WaitTimeSeconds   int32
	MaxMessages       int32
	VisibilityTimeout int32
	ErrorBackoff      time.Duration
}

func (c *Config) applyDefaults() {
	if c.WaitTimeSeconds <= 0 {
		c.WaitTimeSeconds = 20
	}
	if c.MaxMessages <= 0 || c.MaxMessages > 10 {
		c.MaxMessages = 10
	}
	if c.VisibilityTimeout <= 0 {
		c.VisibilityTimeout = 60
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = 5 * time.Second
	}
}

// Bus publishes events as SQS messages and dispatches received ones to
// local handlers
type Bus struct {
	api      API
	cfg      Config
	handlers *eventx.Handlers
	closed   atomic.Bool
}

var _ eventx.EventBus = (*Bus)(nil)

// New creates a bus over an SQS client
func New(api API, cfg Config) *Bus {
	cfg.applyDefaults()
	return &Bus{
		api:      api,
		cfg:      cfg,
		handlers: eventx.NewHandlers(),
	}
}

// NewFromEnv builds the SQS client from the default AWS credential chain
func NewFromEnv(ctx context.Context, cfg Config) (*Bus, error) {
	if cfg.QueueURL == "" {
		return nil, eventx.ErrorRegistry.New(eventx.ErrConnectionFailed).
			WithDetail("driver", "sqs").
			WithDetail("reason", "SQS_QUEUE_URL is not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, eventx.ErrorRegistry.NewWithCause(eventx.ErrConnectionFailed, err).
			WithDetail("driver", "sqs")
	}
	return New(sqs.NewFromConfig(awsCfg), cfg), nil
}

func (b *Bus) Subscribe(_ context.Context, eventType string, handler eventx.EventHandler) error {
	b.handlers.Add(eventType, handler)
	return nil
}

func (b *Bus) HandlerCount(eventType string) int {
	return b.handlers.Count(eventType)
}

// Publish sends the event to the queue
func (b *Bus) Publish(ctx context.Context, event eventx.Event) error {
	if b.closed.Load() {
		return eventx.ErrorRegistry.New(eventx.ErrBusClosed).WithDetail("event_id", event.ID())
	}

	body, err := eventx.ToJSON(event)
	if err != nil {
		return err
	}

	out, err := b.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(b.cfg.QueueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			eventTypeAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Type()),
			},
		},
	})
	if err != nil {
		return eventx.ErrorRegistry.NewWithCause(eventx.ErrPublishFailed, err).
			WithDetail("driver", "sqs").
			WithDetail("event_id", event.ID()).
			WithDetail("event_type", event.Type())
	}

	logx.Debug("Published event %s to SQS as %s", event.ID(), aws.ToString(out.MessageId))
	return nil
}

// Handle decodes one message body and dispatches it. Only undecodable
// bodies return an error; handler failures are logged, never redelivered.
func (b *Bus) Handle(ctx context.Context, body string) error {
	event, err := eventx.FromJSON([]byte(body))
	if err != nil {
		return err
	}
	if err := b.handlers.Dispatch(ctx, event); err != nil {
		logx.Error("Event %s (%s) failed: %s", event.ID(), event.Type(), errx.Print(err))
	}
	return nil
}

// Poll long-polls the queue until ctx is done or the bus is closed.
// Handled messages are deleted; undecodable ones are left for the queue's
// redrive policy.
func (b *Bus) Poll(ctx context.Context) error {
	logx.Info("Polling SQS queue %s", b.cfg.QueueURL)
	for ctx.Err() == nil && !b.closed.Load() {
		out, err := b.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:              aws.String(b.cfg.QueueURL),
			MaxNumberOfMessages:   b.cfg.MaxMessages,
			WaitTimeSeconds:       b.cfg.WaitTimeSeconds,
			VisibilityTimeout:     b.cfg.VisibilityTimeout,
			MessageAttributeNames: []string{eventTypeAttribute},
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logx.Error("SQS receive failed: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(b.cfg.ErrorBackoff):
			}
			continue
		}

		for _, msg := range out.Messages {
			b.process(ctx, msg)
		}
	}
	return nil
}

func (b *Bus) process(ctx context.Context, msg types.Message) {
	if err := b.Handle(ctx, aws.ToString(msg.Body)); err != nil {
		logx.Error("Dropping undecodable SQS message %s: %s", aws.ToString(msg.MessageId), errx.Print(err))
		return
	}
	if _, err := b.api.DeleteMessage(context.WithoutCancel(ctx), &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(b.cfg.QueueURL),
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		logx.Warn("SQS delete failed for %s: %v", aws.ToString(msg.MessageId), err)
	}
}

// Close stops Poll after its current receive
func (b *Bus) Close(context.Context) error {
	b.closed.Store(true)
	return nil
}
