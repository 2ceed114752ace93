package main

import (
	"context"
	"time"

	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/logx"
	"github.com/maachbazar/whatsapp-agent/msgx"
	"github.com/maachbazar/whatsapp-agent/msgx/providers/msgxwhatsapp"
	"github.com/spf13/cobra"
)

type sendOptions struct {
	to       string
	text     string
	template string
	language string
	params   []string
}

func newSendCmd(a *app) *cobra.Command {
	opts := &sendOptions{}
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a text or template message",
		Example: "  waagent send --to 919800000000 --text \"Your order is out for delivery\"\n" +
			"  waagent send --to 919800000000 --template order_update --param ORD12345",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := msgxwhatsapp.NewClient(a.settings.WhatsApp)
			resp, err := opts.send(ctx, client)
			if err != nil {
				logx.Error("Send failed: %s", errx.Print(err))
				return err
			}
			cmd.Printf("sent %s to %s\n", resp.MessageID, resp.To)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.to, "to", "", "recipient phone number in international format")
	cmd.Flags().StringVar(&opts.text, "text", "", "text body")
	cmd.Flags().StringVar(&opts.template, "template", "", "approved template name")
	cmd.Flags().StringVar(&opts.language, "lang", "en_US", "template language code")
	cmd.Flags().StringArrayVar(&opts.params, "param", nil, "template body parameter, repeatable")
	_ = cmd.MarkFlagRequired("to")
	cmd.MarkFlagsMutuallyExclusive("text", "template")
	cmd.MarkFlagsOneRequired("text", "template")
	return cmd
}

func (o *sendOptions) send(ctx context.Context, client *msgxwhatsapp.Client) (*msgx.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if o.template != "" {
		return client.SendTemplate(ctx, o.to, o.template, o.language, o.params...)
	}
	return msgx.NewService(client).Text(ctx, o.to, o.text)
}
