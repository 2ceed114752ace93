// Package msgx holds the WhatsApp webhook data model, outbound replies and
// the Sender contract implemented by providers.
package msgx

import (
	"context"
	"time"
)

// Sender is an outbound messaging channel
type Sender interface {
	// SendText sends a plain text message
	SendText(ctx context.Context, to, body string) (*Response, error)

	// SendInteractive sends a button or list message
	SendInteractive(ctx context.Context, to string, reply InteractiveReply) (*Response, error)

	// MarkAsRead acknowledges an inbound message
	MarkAsRead(ctx context.Context, messageID string) error

	// GetProviderName returns the provider name
	GetProviderName() string
}

// Response represents the provider's answer to a send
type Response struct {
	MessageID    string         `json:"message_id"`
	Provider     string         `json:"provider"`
	To           string         `json:"to"`
	Timestamp    time.Time      `json:"timestamp"`
	ProviderData map[string]any `json:"provider_data,omitempty"`
}

// Reply is an outbound reply built for one inbound message.
// It is either a TextReply or an InteractiveReply.
type Reply interface {
	reply()
}

// TextReply is a plain text body
type TextReply struct {
	Body string
}

// InteractiveKind selects the interactive layout
type InteractiveKind string

const (
	KindButton InteractiveKind = "button"
	KindList   InteractiveKind = "list"
)

// Button is a quick reply button
type Button struct {
	ID    string
	Title string
}

// Row is one selectable entry of a list section
type Row struct {
	ID          string
	Title       string
	Description string
}

// Section groups list rows under a title
type Section struct {
	Title string
	Rows  []Row
}

// InteractiveReply is a button or list message.
// Buttons is used for KindButton; ListButton and Sections for KindList.
type InteractiveReply struct {
	Kind       InteractiveKind
	Header     string
	Body       string
	Footer     string
	Buttons    []Button
	ListButton string
	Sections   []Section
}

func (TextReply) reply()        {}
func (InteractiveReply) reply() {}
