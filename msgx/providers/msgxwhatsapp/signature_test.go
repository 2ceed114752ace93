package msgxwhatsapp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignKnownVector(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	const want = "sha256=03f6dd944ecab4ddac0e3dbc3923b2da4e12b03df679ae23a52efd78ca6056e0"

	sig := Sign("secret", body)
	assert.Equal(t, want, sig)
	assert.True(t, VerifySignature("secret", want, body))

	for i := range body {
		mutated := bytes.Clone(body)
		mutated[i] ^= 0x01
		assert.False(t, VerifySignature("secret", want, mutated), "byte %d", i)
	}
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"entry":[]}`)
	good := Sign("app-secret", body)

	assert.True(t, VerifySignature("app-secret", good, body))
	assert.False(t, VerifySignature("app-secret", good, []byte(`{"entry":[1]}`)))
	assert.False(t, VerifySignature("other", good, body))
	assert.False(t, VerifySignature("app-secret", good[len("sha256="):], body))
	assert.False(t, VerifySignature("app-secret", "", body))
	assert.False(t, VerifySignature("app-secret", "sha256=zz", body))
}

func TestEmptySecretPasses(t *testing.T) {
	v := NewVerifier("")
	assert.False(t, v.Enabled())
	assert.True(t, v.Verify("", []byte("anything")))
}

func TestVerifierBindsSecret(t *testing.T) {
	body := []byte("payload")
	v := NewVerifier("s3")
	assert.True(t, v.Enabled())
	assert.True(t, v.Verify(Sign("s3", body), body))
	assert.False(t, v.Verify(Sign("s4", body), body))
}
