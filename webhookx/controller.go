// Package webhookx is the WhatsApp webhook endpoint: the subscription
// handshake, signature checks on deliveries, the hand-off to the delivery
// bus and the processor that turns deliveries into replies.
//
// The Controller is transport agnostic. Fiber (serve) and API Gateway
// (lambda) adapters translate their requests into Controller calls.
package webhookx

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/eventx"
	"github.com/maachbazar/whatsapp-agent/logx"
	"github.com/maachbazar/whatsapp-agent/msgx"
	"github.com/maachbazar/whatsapp-agent/msgx/providers/msgxwhatsapp"
)

// Response bodies
const (
	BodyEventReceived    = "EVENT_RECEIVED"
	BodyForbidden        = "Forbidden"
	BodyUnauthorized     = "Unauthorized"
	BodyMethodNotAllowed = "Method Not Allowed"
	BodyInternalError    = "Internal Server Error"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJSON = "application/json"
)

// CORSHeaders are set on every response
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, " + msgxwhatsapp.SignatureHeader,
}

// Result is a transport independent HTTP response
type Result struct {
	Status      int
	Body        []byte
	ContentType string
}

func textResult(status int, body string) Result {
	return Result{Status: status, Body: []byte(body), ContentType: contentTypeText}
}

// Controller answers webhook requests
type Controller struct {
	settings    Settings
	verifier    *msgxwhatsapp.Verifier
	bus         eventx.EventBus
	started     time.Time
	lastWebhook atomic.Int64
	now         func() time.Time
}

// NewController creates a controller publishing deliveries on bus
func NewController(settings Settings, bus eventx.EventBus) *Controller {
	return &Controller{
		settings: settings,
		verifier: msgxwhatsapp.NewVerifier(settings.AppSecret),
		bus:      bus,
		started:  time.Now(),
		now:      time.Now,
	}
}

// Settings returns the settings the controller was built with
func (c *Controller) Settings() Settings {
	return c.settings
}

func (c *Controller) logMissingConfig() {
	if len(c.settings.Missing) > 0 {
		logx.Error("Missing required environment variables: %s", strings.Join(c.settings.Missing, ", "))
	}
}

// Verify answers the subscription handshake. The challenge is echoed
// byte for byte when mode is subscribe and the token matches.
func (c *Controller) Verify(mode, token, challenge string) Result {
	c.logMissingConfig()

	if mode == "subscribe" && c.settings.VerifyToken != "" && token == c.settings.VerifyToken {
		logx.Info("Webhook verified")
		return textResult(http.StatusOK, challenge)
	}

	err := errs.New(ErrVerifyFailed).WithDetail("mode", mode)
	logx.Warn("Webhook verification rejected: %s", errx.Print(err))
	return textResult(http.StatusForbidden, BodyForbidden)
}

// Receive acknowledges a delivery and hands it to the bus. body must not be
// reused by the caller afterwards.
func (c *Controller) Receive(ctx context.Context, signature string, body []byte) Result {
	c.logMissingConfig()
	now := c.now()
	c.lastWebhook.Store(now.UnixNano())

	if c.settings.Production() {
		if !c.verifier.Enabled() {
			logx.Warn("WHATSAPP_APP_SECRET is not set, accepting unsigned delivery")
		} else if !c.verifier.Verify(signature, body) {
			err := errs.New(ErrInvalidSignature).WithDetail("body_size", len(body))
			logx.Error("Invalid signature: %s", errx.Print(err))
			return textResult(http.StatusUnauthorized, BodyUnauthorized)
		}
	}

	delivery := msgx.NewDelivery(body, now)
	event := eventx.NewEvent(msgx.DeliveryEvent, delivery, eventx.EventOptions{ID: delivery.ID})
	if err := c.bus.Publish(ctx, event); err != nil {
		xerr := errs.NewWithCause(ErrEnqueueFailed, err).WithDetail("delivery_id", delivery.ID)
		logx.Error("Webhook handler error: %s", errx.Print(xerr))
		return textResult(http.StatusInternalServerError, BodyInternalError)
	}

	logx.Info("Webhook delivery %s accepted (%d bytes)", delivery.ID, len(body))
	return textResult(http.StatusOK, BodyEventReceived)
}

// Options answers CORS preflight requests
func (c *Controller) Options() Result {
	return Result{Status: http.StatusOK}
}

// MethodNotAllowed answers every other method
func (c *Controller) MethodNotAllowed(method string) Result {
	err := errs.New(ErrMethodNotAllowed).WithDetail("method", method)
	logx.Warn("Rejected webhook request: %s", errx.Print(err))
	return textResult(http.StatusMethodNotAllowed, BodyMethodNotAllowed)
}

// LastWebhookAt returns when the last POST arrived
func (c *Controller) LastWebhookAt() (time.Time, bool) {
	ns := c.lastWebhook.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns).UTC(), true
}
