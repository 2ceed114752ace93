package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/eventx/eventxamqp"
	"github.com/maachbazar/whatsapp-agent/eventx/eventxsqs"
	"github.com/maachbazar/whatsapp-agent/logx"
	"github.com/maachbazar/whatsapp-agent/webhookx"
	"github.com/spf13/cobra"
)

func newWorkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume deliveries from SQS or RabbitMQ",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.work(cmd.Context())
		},
	}
}

func (a *app) work(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.settings.QueueDriver == webhookx.DriverMemory {
		err := errx.New("worker needs QUEUE_DRIVER=sqs or amqp", errx.TypeValidation)
		logx.Error("%s", errx.Print(err))
		return err
	}

	bus, err := webhookx.OpenBus(ctx, a.settings)
	if err != nil {
		logx.Error("Opening %s bus failed: %s", a.settings.QueueDriver, errx.Print(err))
		return err
	}
	defer bus.Close(context.Background())

	if err := webhookx.NewProcessorFromSettings(a.settings).Subscribe(ctx, bus); err != nil {
		return err
	}

	logx.Info("Worker %s started (driver %s)", version, a.settings.QueueDriver)
	switch b := bus.(type) {
	case *eventxsqs.Bus:
		err = b.Poll(ctx)
	case *eventxamqp.Bus:
		err = b.Consume(ctx)
	}
	logx.Info("Worker stopped")
	return err
}
