package config

import (
	"os"
	"strings"
	"time"
)

// Env lookup helpers shared by the per-feature Load functions. Unset or
// unparsable values fall back to the default so a partial .env never
// produces a half-configured service.

func envOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// durationEnvOrDefault rejects non-positive durations; a zero row delay or
// sync interval is expressed by leaving the variable unset, not by "0s".
func durationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func boolEnvOrDefault(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return defaultValue
	}
}
