package msgxwhatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the HMAC of the raw webhook body
const SignatureHeader = "X-Hub-Signature-256"

const signaturePrefix = "sha256="

// Sign returns the header value WhatsApp would send for body
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks header against HMAC-SHA256(secret, body).
// An empty secret disables the check and always passes.
func VerifySignature(secret, header string, body []byte) bool {
	if secret == "" {
		return true
	}
	if !strings.HasPrefix(header, signaturePrefix) {
		return false
	}
	return hmac.Equal([]byte(header), []byte(Sign(secret, body)))
}

// Verifier binds an app secret
type Verifier struct {
	secret string
}

// NewVerifier creates a verifier for the app secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Enabled reports whether a secret is configured
func (v *Verifier) Enabled() bool {
	return v.secret != ""
}

// Verify checks a signature header against the raw body
func (v *Verifier) Verify(header string, body []byte) bool {
	return VerifySignature(v.secret, header, body)
}
