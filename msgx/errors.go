package msgx

import (
	"net/http"

	"github.com/maachbazar/whatsapp-agent/errx"
)

// Registry holds the messaging error definitions
var Registry = errx.NewRegistry("MSGX")

var (
	ErrUnrecognizedEnvelope = Registry.Register("UNRECOGNIZED_ENVELOPE", errx.TypeBadRequest, http.StatusBadRequest, "Webhook object is not a WhatsApp Business Account")
	ErrMalformedPayload     = Registry.Register("MALFORMED_PAYLOAD", errx.TypeBadRequest, http.StatusBadRequest, "Webhook body is not valid JSON")
	ErrInvalidMessage       = Registry.Register("INVALID_MESSAGE", errx.TypeValidation, http.StatusBadRequest, "Inbound message failed validation")
	ErrEmptyRecipient       = Registry.Register("EMPTY_RECIPIENT", errx.TypeValidation, http.StatusBadRequest, "Recipient is required")
	ErrUnsupportedReply     = Registry.Register("UNSUPPORTED_REPLY", errx.TypeInternal, http.StatusInternalServerError, "Reply type is not supported")
)
