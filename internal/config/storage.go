package config

const (
	envDatabaseURL = "DATABASE_URL"
	envRosterCSV   = "ROSTER_CSV"

	// Store backends.
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// StorageConfig selects where the three views live. With a DATABASE_URL the
// views are Postgres tables; otherwise they live in memory, optionally
// seeded from a roster CSV export.
type StorageConfig struct {
	DatabaseURL string
	RosterCSV   string
}

// Backend names the store implementation the config resolves to.
func (c StorageConfig) Backend() string {
	if c.DatabaseURL != "" {
		return StorePostgres
	}
	return StoreMemory
}

func loadStorage() StorageConfig {
	return StorageConfig{
		DatabaseURL: envOrDefault(envDatabaseURL, ""),
		RosterCSV:   envOrDefault(envRosterCSV, ""),
	}
}
