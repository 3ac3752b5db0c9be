package config

import "fmt"

// Config holds runtime configuration for the service. It is built once at
// startup, validated, and passed in whole to construction; nothing reads the
// environment after Load returns.
type Config struct {
	Port      string
	Dupr      DuprConfig
	Courtside CourtsideConfig
	Storage   StorageConfig
	Sync      SyncConfig
	Notify    NotifyConfig
	Metrics   MetricsConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:      envOrDefault(envPort, defaultPort),
		Dupr:      loadDupr(),
		Courtside: loadCourtside(),
		Storage:   loadStorage(),
		Sync:      loadSync(),
		Notify:    loadNotify(),
		Metrics:   loadMetrics(),
	}
}

// Validate rejects configurations that cannot possibly sync. Missing DUPR
// credentials are the one fatal configuration error: every row would fail
// authentication, so the batch must never start.
func (c Config) Validate() error {
	if c.Dupr.Username == "" || c.Dupr.Password == "" {
		return fmt.Errorf("DUPR credentials are not configured: set %s and %s", envDuprUsername, envDuprPassword)
	}
	if c.Dupr.ClubID == "" {
		return fmt.Errorf("DUPR club is not configured: set %s", envDuprClubID)
	}
	return nil
}
