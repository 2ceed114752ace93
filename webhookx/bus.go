package webhookx

import (
	"context"

	"github.com/maachbazar/whatsapp-agent/eventx"
	"github.com/maachbazar/whatsapp-agent/eventx/eventxamqp"
	"github.com/maachbazar/whatsapp-agent/eventx/eventxmemory"
	"github.com/maachbazar/whatsapp-agent/eventx/eventxsqs"
)

// OpenBus connects the delivery bus selected by QUEUE_DRIVER
func OpenBus(ctx context.Context, settings Settings) (eventx.EventBus, error) {
	switch settings.QueueDriver {
	case DriverMemory, "":
		return eventxmemory.New(), nil
	case DriverSQS:
		bus, err := eventxsqs.NewFromEnv(ctx, eventxsqs.Config{QueueURL: settings.SQSQueueURL})
		if err != nil {
			return nil, err
		}
		return bus, nil
	case DriverAMQP:
		bus, err := eventxamqp.Dial(ctx, eventxamqp.Config{URL: settings.AMQPURL, Queue: settings.AMQPQueue})
		if err != nil {
			return nil, err
		}
		return bus, nil
	default:
		return nil, errs.New(ErrUnsupportedDriver).
			WithDetail("driver", settings.QueueDriver).
			WithDetail("supported", []string{DriverMemory, DriverSQS, DriverAMQP})
	}
}
