package msgx

import (
	"context"
	"fmt"
	"strings"
)

// Service routes replies to a Sender by their concrete type
type Service struct {
	sender Sender
}

// NewService creates a new messaging service over sender
func NewService(sender Sender) *Service {
	return &Service{sender: sender}
}

// Sender returns the underlying channel
func (s *Service) Sender() Sender {
	return s.sender
}

// Reply sends reply to the recipient
func (s *Service) Reply(ctx context.Context, to string, reply Reply) (*Response, error) {
	if strings.TrimSpace(to) == "" {
		return nil, Registry.New(ErrEmptyRecipient)
	}

	switch r := reply.(type) {
	case TextReply:
		return s.sender.SendText(ctx, to, r.Body)
	case *TextReply:
		return s.sender.SendText(ctx, to, r.Body)
	case InteractiveReply:
		return s.sender.SendInteractive(ctx, to, r)
	case *InteractiveReply:
		return s.sender.SendInteractive(ctx, to, *r)
	default:
		return nil, Registry.New(ErrUnsupportedReply).
			WithDetail("reply_type", fmt.Sprintf("%T", reply)).
			WithDetail("provider", s.sender.GetProviderName())
	}
}

// Text sends a plain text message
func (s *Service) Text(ctx context.Context, to, body string) (*Response, error) {
	return s.Reply(ctx, to, TextReply{Body: body})
}

// MarkAsRead acknowledges an inbound message
func (s *Service) MarkAsRead(ctx context.Context, messageID string) error {
	return s.sender.MarkAsRead(ctx, messageID)
}
