package webhookx

import (
	"net/http"

	"github.com/maachbazar/whatsapp-agent/errx"
)

var errs = errx.NewRegistry("WEBHOOK")

var (
	ErrVerifyFailed      = errs.Register("VERIFY_FAILED", errx.TypeAuthorization, http.StatusForbidden, "Webhook verification failed")
	ErrInvalidSignature  = errs.Register("INVALID_SIGNATURE", errx.TypeAuthorization, http.StatusUnauthorized, "Webhook signature is invalid")
	ErrMethodNotAllowed  = errs.Register("METHOD_NOT_ALLOWED", errx.TypeBadRequest, http.StatusMethodNotAllowed, "Method not allowed")
	ErrEnqueueFailed     = errs.Register("ENQUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Webhook delivery could not be queued")
	ErrProcessingPanic   = errs.Register("PROCESSING_PANIC", errx.TypeInternal, http.StatusInternalServerError, "Message processing panicked")
	ErrUnsupportedDriver = errs.Register("UNSUPPORTED_DRIVER", errx.TypeValidation, http.StatusInternalServerError, "Unsupported queue driver")
)
