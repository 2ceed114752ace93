// Package msgxwhatsapp is the WhatsApp Cloud API provider: outbound text,
// interactive, template and read-receipt calls, plus webhook signature checks.
package msgxwhatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maachbazar/whatsapp-agent/logx"
	"github.com/maachbazar/whatsapp-agent/msgx"
	"golang.org/x/time/rate"
)

const (
	providerName      = "whatsapp"
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultAPIVersion = "v18.0"
	DefaultTimeout    = 10 * time.Second
	DefaultRPS        = 20

	maxErrorBody = 64 << 10
)

// Config holds WhatsApp Business API configuration
type Config struct {
	AccessToken   string
	PhoneNumberID string
	APIVersion    string
	BaseURL       string
	HTTPTimeout   time.Duration

	// RequestsPerSecond paces outbound calls. Zero or less disables pacing.
	RequestsPerSecond float64
}

// Missing lists the unset credential variables
func (c Config) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.AccessToken) == "" {
		missing = append(missing, "WHATSAPP_TOKEN")
	}
	if strings.TrimSpace(c.PhoneNumberID) == "" {
		missing = append(missing, "PHONE_NUMBER_ID")
	}
	return missing
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client implements msgx.Sender over the Cloud API
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ msgx.Sender = (*Client)(nil)

// NewClient creates a new Cloud API client. Missing credentials are not an
// error here; every call fails fast with ErrNotConfigured instead.
func NewClient(config Config, opts ...Option) *Client {
	if config.APIVersion == "" {
		config.APIVersion = DefaultAPIVersion
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.HTTPTimeout <= 0 {
		config.HTTPTimeout = DefaultTimeout
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.HTTPTimeout},
	}
	if config.RequestsPerSecond > 0 {
		burst := int(config.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetProviderName returns the provider name
func (c *Client) GetProviderName() string {
	return providerName
}

// Configured reports whether the token and phone number id are present
func (c *Client) Configured() bool {
	return len(c.config.Missing()) == 0
}

func (c *Client) messagesURL() string {
	return fmt.Sprintf("%s/%s/%s/messages", c.config.BaseURL, c.config.APIVersion, c.config.PhoneNumberID)
}

// SendText sends a plain text message
func (c *Client) SendText(ctx context.Context, to, body string) (*msgx.Response, error) {
	return c.send(ctx, outboundMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &textPayload{Body: body},
	})
}

// SendInteractive sends a reply-button or list message
func (c *Client) SendInteractive(ctx context.Context, to string, reply msgx.InteractiveReply) (*msgx.Response, error) {
	payload, err := buildInteractive(reply)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, outboundMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive:      payload,
	})
}

// SendTemplate sends a pre-approved template. Each body parameter fills the
// next positional {{n}} placeholder of the template body.
func (c *Client) SendTemplate(ctx context.Context, to, name, language string, bodyParams ...string) (*msgx.Response, error) {
	if language == "" {
		language = "en_US"
	}
	tpl := &templatePayload{
		Name:     name,
		Language: templateLanguage{Code: language},
	}
	if len(bodyParams) > 0 {
		params := make([]templateParameter, 0, len(bodyParams))
		for _, p := range bodyParams {
			params = append(params, templateParameter{Type: "text", Text: p})
		}
		tpl.Components = []templateComponent{{Type: "body", Parameters: params}}
	}

	return c.send(ctx, outboundMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template:         tpl,
	})
}

// MarkAsRead sends a read receipt for an inbound message
func (c *Client) MarkAsRead(ctx context.Context, messageID string) error {
	_, err := c.post(ctx, readReceipt{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	})
	return err
}

func (c *Client) send(ctx context.Context, msg outboundMessage) (*msgx.Response, error) {
	resp, err := c.post(ctx, msg)
	if err != nil {
		return nil, err
	}

	out := &msgx.Response{
		Provider:  providerName,
		To:        msg.To,
		Timestamp: time.Now(),
		ProviderData: map[string]any{
			"type": msg.Type,
		},
	}
	if len(resp.Messages) > 0 {
		out.MessageID = resp.Messages[0].ID
	}
	if len(resp.Contacts) > 0 {
		out.ProviderData["wa_id"] = resp.Contacts[0].WaID
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, payload any) (*sendResponse, error) {
	if missing := c.config.Missing(); len(missing) > 0 {
		return nil, errs.New(ErrNotConfigured).
			WithDetail("provider", providerName).
			WithDetail("missing", missing)
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.NewWithCause(ErrSendFailed, err).
			WithDetail("provider", providerName).
			WithDetail("operation", "marshal_message")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errs.NewWithCause(ErrSendFailed, err).
				WithDetail("provider", providerName).
				WithDetail("operation", "rate_wait")
		}
	}

	logx.Debug("Sending WhatsApp payload: %s", string(jsonData))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.messagesURL(), bytes.NewReader(jsonData))
	if err != nil {
		return nil, errs.NewWithCause(ErrSendFailed, err).
			WithDetail("provider", providerName).
			WithDetail("operation", "create_request")
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.NewWithCause(ErrSendFailed, err).
			WithDetail("provider", providerName).
			WithDetail("operation", "http_request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, handleAPIError(resp)
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return nil, errs.NewWithCause(ErrSendFailed, err).
			WithDetail("provider", providerName).
			WithDetail("operation", "decode_response")
	}
	return &out, nil
}

// Graph error codes that mean throttling even when the HTTP status is 400
var throttleCodes = map[int]bool{
	4:      true,
	80007:  true,
	130429: true,
	131048: true,
	131056: true,
}

func handleAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	code := ErrSendFailed
	var graph *GraphError
	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error.Code != 0 {
		graph = &decoded.Error
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests, graph != nil && throttleCodes[graph.Code]:
		code = ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		code = ErrUnauthorized
	case resp.StatusCode == http.StatusBadRequest:
		code = ErrBadRequest
	case resp.StatusCode == http.StatusServiceUnavailable:
		code = ErrUnavailable
	}

	xerr := errs.New(code).
		WithDetail("provider", providerName).
		WithDetail("http_status", resp.StatusCode).
		WithDetail("response_body", string(body))
	if graph != nil {
		xerr.WithDetail("whatsapp_error", *graph)
		xerr.Message = fmt.Sprintf("%s: %s", xerr.Message, graph.Message)
	}
	return xerr
}

func buildInteractive(reply msgx.InteractiveReply) (*interactivePayload, error) {
	p := &interactivePayload{
		Body: interactiveBody{Text: reply.Body},
	}
	if reply.Header != "" {
		p.Header = &interactiveText{Type: "text", Text: reply.Header}
	}
	if reply.Footer != "" {
		p.Footer = &interactiveBody{Text: reply.Footer}
	}

	switch reply.Kind {
	case msgx.KindButton:
		if len(reply.Buttons) == 0 {
			return nil, errs.New(ErrInvalidReply).WithDetail("reason", "button message without buttons")
		}
		p.Type = "button"
		for _, b := range reply.Buttons {
			p.Action.Buttons = append(p.Action.Buttons, replyButton{
				Type:  "reply",
				Reply: replyTitle{ID: b.ID, Title: b.Title},
			})
		}
	case msgx.KindList:
		if len(reply.Sections) == 0 {
			return nil, errs.New(ErrInvalidReply).WithDetail("reason", "list message without sections")
		}
		p.Type = "list"
		p.Action.Button = reply.ListButton
		for _, s := range reply.Sections {
			section := listSection{Title: s.Title}
			for _, r := range s.Rows {
				section.Rows = append(section.Rows, listRow{ID: r.ID, Title: r.Title, Description: r.Description})
			}
			p.Action.Sections = append(p.Action.Sections, section)
		}
	default:
		return nil, errs.New(ErrInvalidReply).WithDetail("kind", string(reply.Kind))
	}
	return p, nil
}
