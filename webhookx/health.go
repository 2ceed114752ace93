package webhookx

import "time"

// HealthReport is the body of GET /
type HealthReport struct {
	Service               string          `json:"service"`
	Version               string          `json:"version"`
	API                   string          `json:"api"`
	Env                   map[string]bool `json:"env"`
	LastWebhookReceivedAt *time.Time      `json:"lastWebhookReceivedAt"`
	UptimeSeconds         int64           `json:"uptimeSeconds"`
	Timestamp             time.Time       `json:"timestamp"`
}

// Health reports configuration presence and webhook activity
func (c *Controller) Health() HealthReport {
	now := c.now().UTC()
	report := HealthReport{
		Service:       c.settings.ServiceName,
		Version:       c.settings.Version,
		API:           "/api/webhook",
		Env:           c.settings.EnvChecks(),
		UptimeSeconds: int64(now.Sub(c.started) / time.Second),
		Timestamp:     now,
	}
	if report.Version == "" {
		report.Version = "0.0.0"
	}
	if last, ok := c.LastWebhookAt(); ok {
		report.LastWebhookReceivedAt = &last
	}
	return report
}
