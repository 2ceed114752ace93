package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/maachbazar/whatsapp-agent/webhookx"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show which required variables are set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			printConfig(cmd.OutOrStdout(), a.settings)
			return nil
		},
	}
}

func printConfig(w io.Writer, s webhookx.Settings) {
	ok := color.New(color.FgGreen).SprintFunc()
	missing := color.New(color.FgRed).SprintFunc()

	checks := s.EnvChecks()
	for _, name := range webhookx.RequiredEnv {
		state := ok("set")
		if !checks[name] {
			state = missing("missing")
		}
		fmt.Fprintf(w, "%-22s %s\n", name, state)
	}

	mode := "development (signatures not enforced)"
	if s.Production() {
		mode = "production (signatures enforced)"
	}
	fmt.Fprintf(w, "%-22s %s\n", "NODE_ENV", mode)
	fmt.Fprintf(w, "%-22s %s\n", "QUEUE_DRIVER", s.QueueDriver)
	fmt.Fprintf(w, "%-22s %s/%s\n", "WHATSAPP_API", s.WhatsApp.BaseURL, s.WhatsApp.APIVersion)
	fmt.Fprintf(w, "%-22s %d per %s\n", "RATE_LIMIT", s.RatePoints, s.RateWindow)
}
