package webhookx

import (
	"context"
	"fmt"

	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/eventx"
	"github.com/maachbazar/whatsapp-agent/intentx"
	"github.com/maachbazar/whatsapp-agent/logx"
	"github.com/maachbazar/whatsapp-agent/msgx"
	"github.com/maachbazar/whatsapp-agent/msgx/providers/msgxwhatsapp"
	"github.com/maachbazar/whatsapp-agent/ratex"
)

// Processor turns deliveries into replies
type Processor struct {
	service  *msgx.Service
	limiter  *ratex.Limiter
	resolver *intentx.Resolver
}

// NewProcessor wires a processor. A nil resolver uses the default catalog.
func NewProcessor(service *msgx.Service, limiter *ratex.Limiter, resolver *intentx.Resolver) *Processor {
	if resolver == nil {
		resolver = intentx.NewResolver(intentx.DefaultCatalog)
	}
	return &Processor{
		service:  service,
		limiter:  limiter,
		resolver: resolver,
	}
}

// NewProcessorFromSettings builds the Cloud API client, limiter and resolver
func NewProcessorFromSettings(settings Settings) *Processor {
	client := msgxwhatsapp.NewClient(settings.WhatsApp)
	return NewProcessor(
		msgx.NewService(client),
		ratex.New(settings.RatePoints, settings.RateWindow),
		nil,
	)
}

// Subscribe registers the processor for deliveries on bus
func (p *Processor) Subscribe(ctx context.Context, bus eventx.EventBus) error {
	return eventx.SubscribeTyped(bus, ctx, msgx.DeliveryEvent, func(ctx context.Context, e eventx.TypedEvent[msgx.Delivery]) error {
		return p.HandleDelivery(ctx, e.Data())
	})
}

// HandleDelivery processes every message of a delivery in order. Envelopes
// for other objects are discarded; status callbacks are only logged.
func (p *Processor) HandleDelivery(ctx context.Context, d msgx.Delivery) error {
	parsed, err := msgx.ParseEnvelope(d.Body)
	if err != nil {
		if errx.IsCode(err, msgx.ErrUnrecognizedEnvelope) {
			logx.Debug("Discarding delivery %s: %s", d.ID, errx.Print(err))
			return nil
		}
		return err
	}

	if !parsed.HasMessages() {
		for _, s := range parsed.Statuses {
			logx.Info("Status update %s: %s (recipient %s)", s.ID, s.Status, s.RecipientID)
		}
		return nil
	}

	for _, m := range parsed.Messages {
		p.HandleMessage(ctx, m)
	}
	return nil
}

// HandleMessage runs one message through limit, read receipt, resolve and
// reply. Failures are logged; a failed reply gets one fallback text unless
// the channel itself is not configured.
func (p *Processor) HandleMessage(ctx context.Context, m msgx.InboundMessage) {
	if err := m.Validate(); err != nil {
		logx.Warn("Skipping invalid message: %s", errx.Print(err))
		return
	}

	if !p.limiter.Allow(m.From) {
		logx.Warn("Rate limit exceeded for %s", m.From)
		return
	}

	err := guard(func() error { return p.reply(ctx, m) })
	if err == nil {
		return
	}
	if errx.IsCode(err, msgxwhatsapp.ErrNotConfigured) {
		logx.Error("Cannot reply to %s: %s", m.ID, errx.Print(err))
		return
	}

	logx.Error("Error processing message %s: %s", m.ID, errx.Print(err))
	ferr := guard(func() error {
		_, err := p.service.Reply(ctx, m.From, intentx.Fallback())
		return err
	})
	if ferr != nil {
		logx.Error("Fallback reply to %s failed: %s", m.From, errx.Print(ferr))
	}
}

func (p *Processor) reply(ctx context.Context, m msgx.InboundMessage) error {
	if m.ID != "" {
		if err := p.service.MarkAsRead(ctx, m.ID); err != nil {
			logx.Warn("Mark as read failed for %s: %s", m.ID, errx.Print(err))
		}
	}

	reply := p.resolver.Resolve(m)
	resp, err := p.service.Reply(ctx, m.From, reply)
	if err != nil {
		return err
	}
	if resp != nil {
		logx.Info("Replied to %s with %s", m.From, resp.MessageID)
	}
	return nil
}

func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.New(ErrProcessingPanic).WithDetail("panic", fmt.Sprint(r))
		}
	}()
	return fn()
}
