// Command waagent runs the MaachBazar WhatsApp agent as a server, a Lambda
// function, a queue worker or a one-off sender.
package main

import (
	"context"
	"os"

	"github.com/maachbazar/whatsapp-agent/configx"
	"github.com/maachbazar/whatsapp-agent/logx"
	"github.com/maachbazar/whatsapp-agent/webhookx"
	"github.com/spf13/cobra"
)

// set with -ldflags "-X main.version=..."
var version = "0.0.0-dev"

type app struct {
	envFile  string
	cfg      configx.Config
	settings webhookx.Settings
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "waagent",
		Short:         "MaachBazar WhatsApp agent",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded when present")

	root.AddCommand(
		newServeCmd(a),
		newLambdaCmd(a),
		newLambdaWorkerCmd(a),
		newWorkerCmd(a),
		newSendCmd(a),
		newConfigCmd(a),
	)

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		logx.Error("%v", err)
		return err
	})
	return root
}

// load layers defaults, the dotenv file and the environment
func (a *app) load() error {
	cfg, err := configx.NewBuilder().
		WithDefaults(webhookx.Defaults()).
		FromDotEnv(a.envFile).
		FromEnv("").
		Build()
	if err != nil {
		logx.Error("Loading configuration failed: %v", err)
		return err
	}

	logx.Configure(logx.Options{
		Level:  cfg.Get("log.level").AsString(),
		Format: cfg.Get("log.format").AsString(),
		Color:  cfg.Get("log.color").AsString(),
		Caller: cfg.Get("log.caller").AsString(),
	})

	a.cfg = cfg
	a.settings = webhookx.LoadSettings(cfg)
	a.settings.Version = version
	return nil
}
