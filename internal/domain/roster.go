package domain

import (
	"strings"
	"time"
)

// RowStatus mirrors the status column persisted on each roster row.
type RowStatus string

const (
	StatusPending          RowStatus = "PENDING"
	StatusSkippedDuplicate RowStatus = "SKIPPED_DUPLICATE"
	StatusSkippedNoName    RowStatus = "SKIPPED_NO_NAME"
	StatusSkippedBadName   RowStatus = "SKIPPED_BAD_NAME"
	StatusNotFound         RowStatus = "NOT_FOUND"
	StatusNoMatch          RowStatus = "NO_MATCH"
	StatusMissingNumericID RowStatus = "MISSING_NUMERIC_ID"
	StatusAddedToClub      RowStatus = "ADDED_TO_CLUB"
	StatusFoundNotAdded    RowStatus = "FOUND_NOT_ADDED"
	StatusError            RowStatus = "ERROR"
)

// noteTimestampLayout matches the sheet's note format, e.g. "9/1/26 @ 14:05".
const noteTimestampLayout = "1/2/06 @ 15:04"

// RosterRow is one human-entered roster line plus the columns this service owns.
// Rows are updated in place and never deleted.
type RosterRow struct {
	Num             int       `json:"num"`
	IDCode          string    `json:"idCode"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	PriorDoubles    string    `json:"priorDoubles"`
	PriorDoublesRel string    `json:"priorDoublesReliability"`
	PriorSingles    string    `json:"priorSingles"`
	PriorSinglesRel string    `json:"priorSinglesReliability"`
	Notes           string    `json:"notes"`
	DuprID          string    `json:"duprId"`
	DuprRating      string    `json:"duprRating"`
	Status          RowStatus `json:"status"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// AppendNote adds one timestamped entry to the row's audit trail. Prior
// entries are never overwritten.
func (r *RosterRow) AppendNote(at time.Time, message string) {
	note := "[" + at.Format(noteTimestampLayout) + "] - " + message
	if r.Notes == "" {
		r.Notes = note
		return
	}
	r.Notes = r.Notes + "\n" + note
}

// SplitName separates a full name into first name (first token) and last name
// (remaining tokens joined). Single-token names yield an empty last name;
// callers decide whether that is acceptable.
func SplitName(fullName string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(fullName))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
