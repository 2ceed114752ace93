package msgx

import (
	"encoding/json"
	"strings"

	"github.com/maachbazar/whatsapp-agent/validatex"
)

// ObjectWhatsAppBusinessAccount is the only envelope object processed
const ObjectWhatsAppBusinessAccount = "whatsapp_business_account"

// Inbound message types
const (
	TypeText        = "text"
	TypeInteractive = "interactive"
	TypeButton      = "button"
)

// WebhookEnvelope is the JSON body WhatsApp POSTs to the webhook
type WebhookEnvelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one business account entry
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change carries one field update
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue is the payload of a messages change
type ChangeValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         Metadata         `json:"metadata"`
	Contacts         []Contact        `json:"contacts,omitempty"`
	Messages         []InboundMessage `json:"messages,omitempty"`
	Statuses         []Status         `json:"statuses,omitempty"`
}

// Metadata identifies the receiving business number
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the sender profile attached to messages
type Contact struct {
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
	WaID string `json:"wa_id"`
}

// InboundMessage is one customer message
type InboundMessage struct {
	ID          string       `json:"id"`
	From        string       `json:"from" validatex:"required"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *Text        `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
	Button      *ButtonReply `json:"button,omitempty"`
	Context     *Context     `json:"context,omitempty"`
}

// Text is the body of a text message
type Text struct {
	Body string `json:"body"`
}

// Interactive is a reply to a button or list message
type Interactive struct {
	Type        string     `json:"type"`
	ButtonReply *ReplyPick `json:"button_reply,omitempty"`
	ListReply   *ReplyPick `json:"list_reply,omitempty"`
}

// ReplyPick is the option a customer tapped
type ReplyPick struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ButtonReply is a template quick reply button press
type ButtonReply struct {
	Payload string `json:"payload"`
	Text    string `json:"text"`
}

// Context references the message being replied to
type Context struct {
	From string `json:"from"`
	ID   string `json:"id"`
}

// Status is a delivery status callback
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// TextBody returns the text body, or "" for other types
func (m InboundMessage) TextBody() string {
	if m.Text == nil {
		return ""
	}
	return m.Text.Body
}

// ReplyID returns the id of the tapped button or list row.
// Button replies win over list replies, which win over template buttons.
func (m InboundMessage) ReplyID() string {
	if m.Interactive != nil {
		if m.Interactive.ButtonReply != nil && m.Interactive.ButtonReply.ID != "" {
			return m.Interactive.ButtonReply.ID
		}
		if m.Interactive.ListReply != nil && m.Interactive.ListReply.ID != "" {
			return m.Interactive.ListReply.ID
		}
	}
	if m.Button != nil {
		return m.Button.Payload
	}
	return ""
}

// Validate checks the fields the pipeline relies on
func (m InboundMessage) Validate() error {
	if err := validatex.Validate(m); err != nil {
		return Registry.NewWithCause(ErrInvalidMessage, err).
			WithDetail("message_id", m.ID).
			WithDetail("type", m.Type)
	}
	return nil
}

// Parsed is the meaningful part of an envelope
type Parsed struct {
	Metadata Metadata
	Contacts []Contact
	Messages []InboundMessage
	Statuses []Status
}

// HasMessages reports whether the delivery carries customer messages
func (p *Parsed) HasMessages() bool {
	return len(p.Messages) > 0
}

// ParseEnvelope decodes a webhook body and extracts entry[0].changes[0].value.
// Envelopes for other objects return ErrUnrecognizedEnvelope. Envelopes with
// no entries or changes parse to an empty Parsed.
func ParseEnvelope(body []byte) (*Parsed, error) {
	var env WebhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, Registry.NewWithCause(ErrMalformedPayload, err).
			WithDetail("body_size", len(body))
	}

	if strings.TrimSpace(env.Object) != ObjectWhatsAppBusinessAccount {
		return nil, Registry.New(ErrUnrecognizedEnvelope).WithDetail("object", env.Object)
	}

	parsed := &Parsed{}
	if len(env.Entry) == 0 || len(env.Entry[0].Changes) == 0 {
		return parsed, nil
	}

	value := env.Entry[0].Changes[0].Value
	parsed.Metadata = value.Metadata
	parsed.Contacts = value.Contacts
	parsed.Messages = value.Messages
	parsed.Statuses = value.Statuses
	return parsed, nil
}
