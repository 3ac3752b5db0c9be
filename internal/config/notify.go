package config

const (
	envSendgridAPIKey = "SENDGRID_API_KEY"
	envNotifyFrom     = "NOTIFY_FROM"
	envNotifyTo       = "NOTIFY_TO"
)

// NotifyConfig controls the batch-summary email. Empty APIKey or recipient
// disables notifications.
type NotifyConfig struct {
	SendgridAPIKey string
	From           string
	To             string
}

// Enabled reports whether summary mail should be sent after a batch.
func (c NotifyConfig) Enabled() bool {
	return c.SendgridAPIKey != "" && c.To != ""
}

func loadNotify() NotifyConfig {
	return NotifyConfig{
		SendgridAPIKey: envOrDefault(envSendgridAPIKey, ""),
		From:           envOrDefault(envNotifyFrom, ""),
		To:             envOrDefault(envNotifyTo, ""),
	}
}
