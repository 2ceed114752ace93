// Package eventxamqp carries eventx events through a RabbitMQ topic exchange.
// The routing key is the event type.
package eventxamqp

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/eventx"
	"github.com/maachbazar/whatsapp-agent/logx"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of *amqp.Channel the bus uses
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Config selects the broker topology
type Config struct {
	URL           string
	Exchange      string
	Queue         string
	Prefetch      int
	Workers       int
	DialAttempts  int
	DialBaseDelay time.Duration
}

func (c *Config) applyDefaults() {
	if c.Exchange == "" {
		c.Exchange = "waagent.events"
	}
	if c.Queue == "" {
		c.Queue = "whatsapp.deliveries"
	}
	if c.Prefetch <= 0 {
		c.Prefetch = 10
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.DialAttempts <= 0 {
		c.DialAttempts = 5
	}
	if c.DialBaseDelay <= 0 {
		c.DialBaseDelay = time.Second
	}
}

// Bus publishes to and consumes from a topic exchange
type Bus struct {
	cfg      Config
	ch       Channel
	conn     io.Closer
	handlers *eventx.Handlers
	pubMu    sync.Mutex
	closeMu  sync.Mutex
	closed   bool
}

var _ eventx.EventBus = (*Bus)(nil)

// New declares the exchange on ch and returns a bus using it
func New(ch Channel, cfg Config) (*Bus, error) {
	cfg.applyDefaults()
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, eventx.ErrorRegistry.NewWithCause(eventx.ErrConnectionFailed, err).
			WithDetail("driver", "amqp").
			WithDetail("exchange", cfg.Exchange)
	}
	return &Bus{
		cfg:      cfg,
		ch:       ch,
		handlers: eventx.NewHandlers(),
	}, nil
}

// Dial connects to the broker with exponential backoff and opens a channel
func Dial(ctx context.Context, cfg Config) (*Bus, error) {
	cfg.applyDefaults()
	if cfg.URL == "" {
		return nil, eventx.ErrorRegistry.New(eventx.ErrConnectionFailed).
			WithDetail("driver", "amqp").
			WithDetail("reason", "AMQP_URL is not set")
	}

	var conn *amqp.Connection
	var lastErr error
	delay := cfg.DialBaseDelay
	for attempt := 1; attempt <= cfg.DialAttempts; attempt++ {
		conn, lastErr = amqp.Dial(cfg.URL)
		if lastErr == nil {
			break
		}
		logx.Warn("RabbitMQ dial attempt %d/%d failed: %v", attempt, cfg.DialAttempts, lastErr)
		if attempt == cfg.DialAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, eventx.ErrorRegistry.NewWithCause(eventx.ErrConnectionFailed, ctx.Err()).WithDetail("driver", "amqp")
		case <-time.After(delay):
		}
		if delay < time.Minute {
			delay *= 2
		}
	}
	if lastErr != nil {
		return nil, eventx.ErrorRegistry.NewWithCause(eventx.ErrConnectionFailed, lastErr).
			WithDetail("driver", "amqp").
			WithDetail("attempts", cfg.DialAttempts)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, eventx.ErrorRegistry.NewWithCause(eventx.ErrConnectionFailed, err).WithDetail("driver", "amqp")
	}

	bus, err := New(ch, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	bus.conn = conn
	return bus, nil
}

func (b *Bus) Subscribe(_ context.Context, eventType string, handler eventx.EventHandler) error {
	b.handlers.Add(eventType, handler)
	return nil
}

func (b *Bus) HandlerCount(eventType string) int {
	return b.handlers.Count(eventType)
}

// Publish sends a persistent message routed by event type
func (b *Bus) Publish(ctx context.Context, event eventx.Event) error {
	body, err := eventx.ToJSON(event)
	if err != nil {
		return err
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	if b.isClosed() {
		return eventx.ErrorRegistry.New(eventx.ErrBusClosed).WithDetail("event_id", event.ID())
	}

	err = b.ch.PublishWithContext(ctx, b.cfg.Exchange, event.Type(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID(),
		Type:         event.Type(),
		Timestamp:    event.Timestamp(),
		Body:         body,
	})
	if err != nil {
		return eventx.ErrorRegistry.NewWithCause(eventx.ErrPublishFailed, err).
			WithDetail("driver", "amqp").
			WithDetail("event_id", event.ID()).
			WithDetail("event_type", event.Type())
	}
	return nil
}

// Consume binds the queue to every subscribed event type and runs a worker
// pool until ctx is done or the broker closes the delivery channel.
// Messages are acked after dispatch; undecodable ones are rejected without requeue.
func (b *Bus) Consume(ctx context.Context) error {
	if err := b.ch.Qos(b.cfg.Prefetch, 0, false); err != nil {
		return eventx.ErrorRegistry.NewWithCause(eventx.ErrConnectionFailed, err).WithDetail("operation", "qos")
	}
	q, err := b.ch.QueueDeclare(b.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return eventx.ErrorRegistry.NewWithCause(eventx.ErrConnectionFailed, err).WithDetail("operation", "queue_declare")
	}
	for _, key := range b.handlers.Types() {
		if err := b.ch.QueueBind(q.Name, key, b.cfg.Exchange, false, nil); err != nil {
			return eventx.ErrorRegistry.NewWithCause(eventx.ErrConnectionFailed, err).
				WithDetail("operation", "queue_bind").
				WithDetail("routing_key", key)
		}
	}
	deliveries, err := b.ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return eventx.ErrorRegistry.NewWithCause(eventx.ErrConnectionFailed, err).WithDetail("operation", "consume")
	}

	logx.Info("Consuming RabbitMQ queue %s with %d workers", q.Name, b.cfg.Workers)

	var wg sync.WaitGroup
	for i := 0; i < b.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						return
					}
					b.handle(ctx, d)
				}
			}
		}()
	}
	wg.Wait()
	return nil
}

func (b *Bus) handle(ctx context.Context, d amqp.Delivery) {
	event, err := eventx.FromJSON(d.Body)
	if err != nil {
		logx.Error("Rejecting undecodable message %s: %s", d.MessageId, errx.Print(err))
		_ = d.Nack(false, false)
		return
	}

	if err := b.handlers.Dispatch(context.WithoutCancel(ctx), event); err != nil {
		logx.Error("Event %s (%s) failed: %s", event.ID(), event.Type(), errx.Print(err))
	}
	if err := d.Ack(false); err != nil {
		logx.Warn("Ack failed for %s: %v", event.ID(), err)
	}
}

func (b *Bus) isClosed() bool {
	b.closeMu.Lock()
	defer b.closeMu.Unlock()
	return b.closed
}

// Close closes the channel and the connection
func (b *Bus) Close(context.Context) error {
	b.closeMu.Lock()
	if b.closed {
		b.closeMu.Unlock()
		return nil
	}
	b.closed = true
	b.closeMu.Unlock()

	err := b.ch.Close()
	if b.conn != nil {
		if cerr := b.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
