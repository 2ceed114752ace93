package webhookx

import (
	"strings"
	"time"

	"github.com/maachbazar/whatsapp-agent/configx"
	"github.com/maachbazar/whatsapp-agent/msgx/providers/msgxwhatsapp"
	"github.com/maachbazar/whatsapp-agent/ratex"
)

// Queue drivers
const (
	DriverMemory = "memory"
	DriverSQS    = "sqs"
	DriverAMQP   = "amqp"
)

const (
	DefaultServiceName = "maachbazar-whatsapp-agent"
	DefaultPort        = 3000
	DefaultAMQPQueue   = "whatsapp.deliveries"
)

// RequiredEnv are the variables reported when missing
var RequiredEnv = []string{"WHATSAPP_TOKEN", "VERIFY_TOKEN", "PHONE_NUMBER_ID", "WHATSAPP_APP_SECRET"}

// Defaults returns the baseline values fed to the config builder
func Defaults() map[string]string {
	return map[string]string{
		"NODE_ENV":             "development",
		"PORT":                 "3000",
		"WHATSAPP_API_URL":     msgxwhatsapp.DefaultBaseURL,
		"WHATSAPP_API_VERSION": msgxwhatsapp.DefaultAPIVersion,
		"WHATSAPP_TIMEOUT":     msgxwhatsapp.DefaultTimeout.String(),
		"WHATSAPP_RPS":         "20",
		"RATE_LIMIT_POINTS":    "10",
		"RATE_LIMIT_WINDOW":    "60s",
		"QUEUE_DRIVER":         DriverMemory,
		"AMQP_QUEUE":           DefaultAMQPQueue,
		"SERVICE_NAME":         DefaultServiceName,
	}
}

// Settings is the typed view of the agent configuration
type Settings struct {
	VerifyToken string
	AppSecret   string
	Env         string
	Port        int
	ServiceName string
	Version     string

	WhatsApp msgxwhatsapp.Config

	RatePoints int
	RateWindow time.Duration

	QueueDriver string
	SQSQueueURL string
	AMQPURL     string
	AMQPQueue   string

	// Missing holds the RequiredEnv names that were unset at load time
	Missing []string
}

// LoadSettings reads Settings from cfg
func LoadSettings(cfg configx.Config) Settings {
	return Settings{
		VerifyToken: cfg.Get("verify.token").AsString(),
		AppSecret:   cfg.Get("whatsapp.app.secret").AsString(),
		Env:         strings.ToLower(cfg.Get("node.env").AsStringDefault("development")),
		Port:        cfg.Get("port").AsIntDefault(DefaultPort),
		ServiceName: cfg.Get("service.name").AsStringDefault(DefaultServiceName),
		WhatsApp: msgxwhatsapp.Config{
			AccessToken:       cfg.Get("whatsapp.token").AsString(),
			PhoneNumberID:     cfg.Get("phone.number.id").AsString(),
			APIVersion:        cfg.Get("whatsapp.api.version").AsStringDefault(msgxwhatsapp.DefaultAPIVersion),
			BaseURL:           cfg.Get("whatsapp.api.url").AsStringDefault(msgxwhatsapp.DefaultBaseURL),
			HTTPTimeout:       cfg.Get("whatsapp.timeout").AsDurationDefault(msgxwhatsapp.DefaultTimeout),
			RequestsPerSecond: cfg.Get("whatsapp.rps").AsFloatDefault(msgxwhatsapp.DefaultRPS),
		},
		RatePoints:  cfg.Get("rate.limit.points").AsIntDefault(ratex.DefaultPoints),
		RateWindow:  cfg.Get("rate.limit.window").AsDurationDefault(ratex.DefaultWindow),
		QueueDriver: strings.ToLower(cfg.Get("queue.driver").AsStringDefault(DriverMemory)),
		SQSQueueURL: cfg.Get("sqs.queue.url").AsString(),
		AMQPURL:     cfg.Get("amqp.url").AsString(),
		AMQPQueue:   cfg.Get("amqp.queue").AsStringDefault(DefaultAMQPQueue),
		Missing:     cfg.Missing(RequiredEnv...),
	}
}

// Production reports whether signatures are enforced
func (s Settings) Production() bool {
	return s.Env == "production"
}

// EnvChecks maps each required variable to whether it is set
func (s Settings) EnvChecks() map[string]bool {
	checks := make(map[string]bool, len(RequiredEnv))
	for _, name := range RequiredEnv {
		checks[name] = true
	}
	for _, name := range s.Missing {
		checks[name] = false
	}
	return checks
}
