package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"dupr-sync-service/internal/domain"
)

func TestRecorderCountsProviderAttempts(t *testing.T) {
	rec := NewRecorder()

	rec.RecordProviderAttempt("dupr", 20*time.Millisecond, nil)
	rec.RecordProviderAttempt("dupr", 35*time.Millisecond, errors.New("boom"))
	rec.RecordProviderAttempt("courtside", time.Millisecond, nil)

	if got := rec.ProviderCalls("dupr"); got != 2 {
		t.Fatalf("expected 2 dupr calls, got %d", got)
	}
	if got := rec.ProviderErrors("dupr"); got != 1 {
		t.Fatalf("expected 1 dupr error, got %d", got)
	}
	if got := rec.ProviderCalls("courtside"); got != 1 {
		t.Fatalf("expected 1 courtside call, got %d", got)
	}
}

func TestRecorderCountsRateLimits(t *testing.T) {
	rec := NewRecorder()
	rec.RecordRateLimit("dupr", 30*time.Second)
	rec.RecordRateLimit("dupr", 0)

	if got := rec.RateLimitHits("dupr"); got != 2 {
		t.Fatalf("expected 2 rate limit hits, got %d", got)
	}
}

func TestRecorderCountsRowOutcomes(t *testing.T) {
	rec := NewRecorder()
	rec.RecordRowOutcome(domain.StatusAddedToClub)
	rec.RecordRowOutcome(domain.StatusAddedToClub)
	rec.RecordRowOutcome(domain.StatusNotFound)

	if got := rec.RowOutcomes(domain.StatusAddedToClub); got != 2 {
		t.Fatalf("expected 2 added rows, got %d", got)
	}
	if got := rec.RowOutcomes(domain.StatusNotFound); got != 1 {
		t.Fatalf("expected 1 not-found row, got %d", got)
	}
	if got := rec.RowOutcomes(domain.StatusError); got != 0 {
		t.Fatalf("expected 0 error rows, got %d", got)
	}
}

func TestRecorderCountsBatches(t *testing.T) {
	rec := NewRecorder()
	rec.RecordBatch(time.Second, nil)
	rec.RecordBatch(2*time.Second, errors.New("auth failed"))

	if got := rec.BatchRuns(); got != 2 {
		t.Fatalf("expected 2 batch runs, got %d", got)
	}
	if got := rec.BatchErrors(); got != 1 {
		t.Fatalf("expected 1 batch error, got %d", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordProviderAttempt("dupr", time.Second, nil)
	rec.RecordRowOutcome(domain.StatusError)
	rec.RecordBatch(time.Second, nil)
	if rec.ProviderCalls("dupr") != 0 || rec.BatchRuns() != 0 {
		t.Fatal("nil recorder should report zeros")
	}
}

func TestSetupDisabledReturnsPlainRecorder(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil {
		t.Fatal("expected recorder")
	}
	if handler != nil {
		t.Fatal("expected no prometheus handler when disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown should be a no-op, got %v", err)
	}
}

func TestSetupEnabledBuildsPrometheusHandler(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{Enabled: true, ServiceName: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if rec == nil || handler == nil {
		t.Fatal("expected recorder and handler")
	}
	rec.RecordProviderAttempt("dupr", time.Millisecond, nil)
	if got := rec.ProviderCalls("dupr"); got != 1 {
		t.Fatalf("expected instrumented recorder to count, got %d", got)
	}
}
