package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/logx"
	"github.com/maachbazar/whatsapp-agent/webhookx"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port > 0 {
				a.settings.Port = port
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (defaults to PORT)")
	return cmd
}

func (a *app) serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus, err := webhookx.OpenBus(ctx, a.settings)
	if err != nil {
		logx.Error("Opening %s bus failed: %s", a.settings.QueueDriver, errx.Print(err))
		return err
	}

	// With a remote queue the worker processes deliveries; memory handles them here
	if a.settings.QueueDriver == webhookx.DriverMemory {
		if err := webhookx.NewProcessorFromSettings(a.settings).Subscribe(ctx, bus); err != nil {
			return err
		}
	}

	server := webhookx.NewApp(webhookx.NewController(a.settings, bus))
	addr := fmt.Sprintf(":%d", a.settings.Port)

	errCh := make(chan error, 1)
	go func() {
		logx.Info("Starting %s %s on %s (driver %s)", a.settings.ServiceName, version, addr, a.settings.QueueDriver)
		logx.Info("Webhook endpoints: %v", webhookx.WebhookPaths)
		errCh <- server.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logx.Error("Server failed: %v", err)
		}
		return err
	case <-ctx.Done():
	}

	logx.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logx.Error("Server shutdown error: %v", err)
	}
	if err := bus.Close(shutdownCtx); err != nil {
		logx.Error("Draining deliveries failed: %v", err)
		return err
	}
	logx.Info("Server stopped")
	return nil
}
