package msgx

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// DeliveryEvent is the bus event type for acknowledged webhook bodies
const DeliveryEvent = "whatsapp.delivery"

// Delivery is one acknowledged webhook POST body waiting to be processed
type Delivery struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	Body       []byte    `json:"body"`
}

// NewDelivery wraps a raw body. The body is copied byte for byte and need
// not be valid JSON; it travels base64 encoded on the bus.
func NewDelivery(body []byte, receivedAt time.Time) Delivery {
	return Delivery{
		ID:         uuid.NewString(),
		ReceivedAt: receivedAt.UTC(),
		Body:       bytes.Clone(body),
	}
}
