package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dupr-sync-service/internal/domain"
)

func TestWriteAndLatest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	writer := NewWriter(dir)

	run := domain.NewReport(time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC))
	run.Record(domain.RowOutcome{Row: 1, FullName: "John Doe", Status: domain.StatusAddedToClub})
	run.Finished = run.Started.Add(time.Minute)

	path, err := writer.Write(run)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "run-20260901-140000.json" {
		t.Fatalf("unexpected report name %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file missing: %v", err)
	}

	latest, err := writer.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Processed() != 1 || latest.Enrolled() != 1 {
		t.Fatalf("latest report lost data: %+v", latest)
	}
}

func TestLatestBeforeAnyRun(t *testing.T) {
	writer := NewWriter(t.TempDir())
	if _, err := writer.Latest(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestWriteKeepsEarlierRuns(t *testing.T) {
	writer := NewWriter(t.TempDir())

	first := domain.NewReport(time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC))
	second := domain.NewReport(time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC))

	firstPath, err := writer.Write(first)
	if err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if _, err := writer.Write(second); err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if _, err := os.Stat(firstPath); err != nil {
		t.Fatalf("earlier run was overwritten: %v", err)
	}

	latest, err := writer.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !latest.Started.Equal(second.Started) {
		t.Fatalf("latest.json not refreshed, got start %v", latest.Started)
	}
}
