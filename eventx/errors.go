package eventx

import (
	"net/http"

	"github.com/maachbazar/whatsapp-agent/errx"
)

// ErrorRegistry holds the event bus error definitions
var ErrorRegistry = errx.NewRegistry("EVENT")

var (
	ErrPublishFailed       = ErrorRegistry.Register("PUBLISH_FAILED", errx.TypeUnavailable, http.StatusServiceUnavailable, "Failed to publish event")
	ErrSerializationFailed = ErrorRegistry.Register("SERIALIZATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to serialize event")
	ErrNoHandler           = ErrorRegistry.Register("NO_HANDLER", errx.TypeNotFound, http.StatusNotFound, "No handler subscribed for event type")
	ErrInvalidEventType    = ErrorRegistry.Register("INVALID_EVENT_TYPE", errx.TypeValidation, http.StatusBadRequest, "Event payload does not match the handler type")
	ErrHandlerPanic        = ErrorRegistry.Register("HANDLER_PANIC", errx.TypeInternal, http.StatusInternalServerError, "Event handler panicked")
	ErrBusClosed           = ErrorRegistry.Register("BUS_CLOSED", errx.TypeUnavailable, http.StatusServiceUnavailable, "Event bus is closed")
	ErrConnectionFailed    = ErrorRegistry.Register("CONNECTION_FAILED", errx.TypeUnavailable, http.StatusServiceUnavailable, "Event bus connection failed")
)
