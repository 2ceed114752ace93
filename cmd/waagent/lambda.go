package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/eventx/eventxsqs"
	"github.com/maachbazar/whatsapp-agent/logx"
	"github.com/maachbazar/whatsapp-agent/webhookx"
	"github.com/spf13/cobra"
)

// records of one SQS batch handled at the same time
const lambdaBatchConcurrency = 4

func newLambdaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve the webhook from an API Gateway or Function URL Lambda",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bus, err := a.sqsBus(cmd.Context())
			if err != nil {
				return err
			}
			controller := webhookx.NewController(a.settings, bus)
			lambda.Start(controller.HandleAPIGateway)
			return nil
		},
	}
}

func newLambdaWorkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda-worker",
		Short: "Process deliveries from an SQS-triggered Lambda",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bus, err := a.sqsBus(cmd.Context())
			if err != nil {
				return err
			}
			if err := webhookx.NewProcessorFromSettings(a.settings).Subscribe(cmd.Context(), bus); err != nil {
				return err
			}
			lambda.Start(webhookx.SQSHandler(bus, lambdaBatchConcurrency))
			return nil
		},
	}
}

// sqsBus opens the SQS bus. A Lambda sandbox is frozen between invocations,
// so deliveries cannot be left to goroutines.
func (a *app) sqsBus(ctx context.Context) (*eventxsqs.Bus, error) {
	if a.settings.QueueDriver != webhookx.DriverSQS {
		err := errx.New("Lambda modes require QUEUE_DRIVER=sqs", errx.TypeValidation).
			WithDetail("driver", a.settings.QueueDriver)
		logx.Error("%s", errx.Print(err))
		return nil, err
	}
	bus, err := eventxsqs.NewFromEnv(ctx, eventxsqs.Config{QueueURL: a.settings.SQSQueueURL})
	if err != nil {
		logx.Error("Opening SQS bus failed: %s", errx.Print(err))
		return nil, err
	}
	return bus, nil
}
