/*
Package errx provides structured errors with codes, types, details and
HTTP status mapping.

Each package declares its own registry with a code prefix:

	var (
		errs        = errx.NewRegistry("WHATSAPP")
		ErrNotReady = errs.Register("NOT_CONFIGURED", errx.TypeValidation, http.StatusServiceUnavailable, "WhatsApp credentials not configured")
	)

	return errs.New(ErrNotReady).WithDetail("missing", "PHONE_NUMBER_ID")

Callers branch on codes rather than messages:

	if errx.IsCode(err, msgxwhatsapp.ErrNotConfigured) {
		// no channel to notify the user
	}

Fiber handlers can return an error directly as a JSON response:

	return errs.New(ErrInvalidSignature).ToFiber(c)

Print renders an error and its details on one line for logx.
*/
package errx
