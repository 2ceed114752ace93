package msgxwhatsapp

import (
	"net/http"

	"github.com/maachbazar/whatsapp-agent/errx"
)

var errs = errx.NewRegistry("WHATSAPP")

var (
	ErrNotConfigured = errs.Register("NOT_CONFIGURED", errx.TypeValidation, http.StatusServiceUnavailable, "WhatsApp credentials not configured")
	ErrSendFailed    = errs.Register("SEND_FAILED", errx.TypeExternal, http.StatusBadGateway, "WhatsApp API request failed")
	ErrRateLimited   = errs.Register("RATE_LIMITED", errx.TypeRateLimit, http.StatusTooManyRequests, "WhatsApp API rate limit exceeded")
	ErrUnauthorized  = errs.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "WhatsApp API rejected the access token")
	ErrBadRequest    = errs.Register("BAD_REQUEST", errx.TypeBadRequest, http.StatusBadRequest, "WhatsApp API rejected the message")
	ErrUnavailable   = errs.Register("UNAVAILABLE", errx.TypeUnavailable, http.StatusServiceUnavailable, "WhatsApp API unavailable")
	ErrInvalidReply  = errs.Register("INVALID_REPLY", errx.TypeValidation, http.StatusBadRequest, "Interactive reply is not valid")
)
