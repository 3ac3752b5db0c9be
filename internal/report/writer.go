// Package report persists batch run reports as JSON files so operators can
// inspect past runs without log access.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dupr-sync-service/internal/domain"
)

const latestName = "latest.json"

// Writer saves one JSON file per run plus a latest.json copy.
type Writer struct {
	dir string
}

// NewWriter returns a writer rooted at dir. The directory is created on the
// first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write stores the report under a timestamped name and refreshes
// latest.json. Files are written to a temp path and renamed so a crashed
// write never leaves a truncated report behind.
func (w *Writer) Write(report domain.Report) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	name := fmt.Sprintf("run-%s.json", report.Started.UTC().Format("20060102-150405"))
	path := filepath.Join(w.dir, name)
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	if err := writeAtomic(filepath.Join(w.dir, latestName), data); err != nil {
		return "", err
	}
	return path, nil
}

// Latest loads the most recent report, or os.ErrNotExist when no run has
// been recorded yet.
func (w *Writer) Latest() (domain.Report, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, latestName))
	if err != nil {
		return domain.Report{}, err
	}
	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return domain.Report{}, fmt.Errorf("decoding latest report: %w", err)
	}
	return report, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return fmt.Errorf("creating temp report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publishing report: %w", err)
	}
	return nil
}
