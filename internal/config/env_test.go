package config

import (
	"testing"
	"time"
)

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_ENV_KEY", "value")
	if got := envOrDefault("TEST_ENV_KEY", "fallback"); got != "value" {
		t.Fatalf("expected env value, got %s", got)
	}
	if got := envOrDefault("TEST_ENV_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestDurationEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_DURATION", "750ms")
	if got := durationEnvOrDefault("TEST_DURATION", time.Second); got != 750*time.Millisecond {
		t.Fatalf("expected 750ms, got %s", got)
	}

	t.Setenv("TEST_DURATION_BAD", "not-a-duration")
	if got := durationEnvOrDefault("TEST_DURATION_BAD", time.Second); got != time.Second {
		t.Fatalf("expected default on parse failure, got %s", got)
	}

	t.Setenv("TEST_DURATION_NEG", "-5s")
	if got := durationEnvOrDefault("TEST_DURATION_NEG", time.Second); got != time.Second {
		t.Fatalf("expected default on non-positive duration, got %s", got)
	}
}

func TestBoolEnvOrDefault(t *testing.T) {
	tests := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"YES", false, true},
		{"0", true, false},
		{"no", true, false},
		{"", true, true},
		{"maybe", false, false},
	}

	for _, tt := range tests {
		t.Setenv("TEST_BOOL", tt.raw)
		if got := boolEnvOrDefault("TEST_BOOL", tt.def); got != tt.want {
			t.Fatalf("boolEnvOrDefault(%q, %v) = %v, want %v", tt.raw, tt.def, got, tt.want)
		}
	}
}
