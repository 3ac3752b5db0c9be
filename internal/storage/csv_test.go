package storage

import (
	"strings"
	"testing"

	"dupr-sync-service/internal/domain"
)

func TestParseRosterCSV(t *testing.T) {
	input := strings.Join([]string{
		"Num,ID,Name,Email,Phone,Status",
		`1,AB12,John Doe,john@example.com,(303) 555-0101,`,
		`2,,Jane Smith,jane@example.com,,ADDED_TO_CLUB`,
		`3,,,,,`,
	}, "\n")

	rows, err := ParseRosterCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRosterCSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows including the blank one, got %d", len(rows))
	}

	if rows[0].Num != 1 || rows[0].FullName != "John Doe" || rows[0].Email != "john@example.com" {
		t.Fatalf("row 1 parsed wrong: %+v", rows[0])
	}
	if rows[0].Status != domain.StatusPending {
		t.Fatalf("blank status should default to PENDING, got %q", rows[0].Status)
	}
	if rows[1].Status != domain.StatusAddedToClub {
		t.Fatalf("expected persisted status kept, got %q", rows[1].Status)
	}
	if rows[2].FullName != "" {
		t.Fatalf("expected blank-name row preserved, got %q", rows[2].FullName)
	}
}

func TestParseRosterCSVNumbersRowsWithoutNumColumn(t *testing.T) {
	input := "Name\nJohn Doe\nJane Smith\n"
	rows, err := ParseRosterCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRosterCSV: %v", err)
	}
	if rows[0].Num != 1 || rows[1].Num != 2 {
		t.Fatalf("expected sequential numbering, got %d, %d", rows[0].Num, rows[1].Num)
	}
}

func TestParseRosterCSVMissingNameColumn(t *testing.T) {
	if _, err := ParseRosterCSV(strings.NewReader("Email\na@b.com\n")); err == nil {
		t.Fatal("expected error for missing name column")
	}
}

func TestParseRosterCSVBadNum(t *testing.T) {
	input := "Num,Name\nxyz,John Doe\n"
	if _, err := ParseRosterCSV(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for non-numeric num column")
	}
}
