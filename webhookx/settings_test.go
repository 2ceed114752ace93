package webhookx

import (
	"testing"
	"time"

	"github.com/maachbazar/whatsapp-agent/configx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	cfg, err := configx.NewBuilder().WithDefaults(Defaults()).Build()
	require.NoError(t, err)

	s := LoadSettings(cfg)
	assert.Equal(t, "development", s.Env)
	assert.False(t, s.Production())
	assert.Equal(t, 3000, s.Port)
	assert.Equal(t, DefaultServiceName, s.ServiceName)
	assert.Equal(t, "https://graph.facebook.com", s.WhatsApp.BaseURL)
	assert.Equal(t, "v18.0", s.WhatsApp.APIVersion)
	assert.Equal(t, 10*time.Second, s.WhatsApp.HTTPTimeout)
	assert.Equal(t, 20.0, s.WhatsApp.RequestsPerSecond)
	assert.Equal(t, 10, s.RatePoints)
	assert.Equal(t, time.Minute, s.RateWindow)
	assert.Equal(t, DriverMemory, s.QueueDriver)
	assert.Equal(t, "whatsapp.deliveries", s.AMQPQueue)
	assert.Equal(t, RequiredEnv, s.Missing)
	assert.Empty(t, s.VerifyToken)
}

func TestLoadSettingsOverrides(t *testing.T) {
	cfg, err := configx.NewBuilder().
		WithDefaults(Defaults()).
		FromMap(map[string]string{
			"WHATSAPP_TOKEN":      "tok",
			"VERIFY_TOKEN":        "verify",
			"PHONE_NUMBER_ID":     "123",
			"WHATSAPP_APP_SECRET": "secret",
			"NODE_ENV":            "Production",
			"WHATSAPP_RPS":        "0",
			"RATE_LIMIT_WINDOW":   "30",
			"QUEUE_DRIVER":        "SQS",
			"SQS_QUEUE_URL":       "https://sqs.local/q",
		}, "test").
		Build()
	require.NoError(t, err)

	s := LoadSettings(cfg)
	assert.True(t, s.Production())
	assert.Equal(t, "tok", s.WhatsApp.AccessToken)
	assert.Equal(t, "123", s.WhatsApp.PhoneNumberID)
	assert.Zero(t, s.WhatsApp.RequestsPerSecond)
	assert.Equal(t, 30*time.Second, s.RateWindow)
	assert.Equal(t, DriverSQS, s.QueueDriver)
	assert.Equal(t, "https://sqs.local/q", s.SQSQueueURL)
	assert.Empty(t, s.Missing)
	assert.Equal(t, map[string]bool{
		"WHATSAPP_TOKEN":      true,
		"VERIFY_TOKEN":        true,
		"PHONE_NUMBER_ID":     true,
		"WHATSAPP_APP_SECRET": true,
	}, s.EnvChecks())
}
