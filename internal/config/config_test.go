package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.Dupr.BaseURL != defaultDuprBaseURL {
		t.Fatalf("expected default DUPR base URL, got %s", cfg.Dupr.BaseURL)
	}
	if cfg.Sync.RowDelay != 200*time.Millisecond {
		t.Fatalf("expected 200ms row delay, got %s", cfg.Sync.RowDelay)
	}
	if cfg.Storage.Backend() != StoreMemory {
		t.Fatalf("expected memory backend by default, got %s", cfg.Storage.Backend())
	}
	if cfg.Courtside.Enabled() {
		t.Fatal("expected courtside lookup disabled by default")
	}
	if cfg.Notify.Enabled() {
		t.Fatal("expected notifications disabled by default")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DUPR_BASE_URL", "http://localhost:8181")
	t.Setenv("DUPR_CLUB_ID", "5996780750")
	t.Setenv("SYNC_ROW_DELAY", "1s")
	t.Setenv("DATABASE_URL", "postgres://localhost/club")

	cfg := Load()

	if cfg.Dupr.BaseURL != "http://localhost:8181" {
		t.Fatalf("expected env base URL, got %s", cfg.Dupr.BaseURL)
	}
	if cfg.Dupr.ClubID != "5996780750" {
		t.Fatalf("expected env club id, got %s", cfg.Dupr.ClubID)
	}
	if cfg.Sync.RowDelay != time.Second {
		t.Fatalf("expected 1s row delay, got %s", cfg.Sync.RowDelay)
	}
	if cfg.Storage.Backend() != StorePostgres {
		t.Fatalf("expected postgres backend, got %s", cfg.Storage.Backend())
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	cfg := Config{Dupr: DuprConfig{ClubID: "123"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing credentials")
	}

	cfg.Dupr.Username = "ops@example.com"
	cfg.Dupr.Password = "secret"
	cfg.Dupr.ClubID = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing club id")
	}

	cfg.Dupr.ClubID = "123"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
