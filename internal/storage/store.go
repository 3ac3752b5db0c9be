// Package storage persists the three roster views: the working roster,
// the current-state ratings, and the append-only rating history.
package storage

import (
	"context"
	"errors"

	"dupr-sync-service/internal/domain"
)

var (
	// ErrRowNotFound is returned when a roster row number does not exist.
	ErrRowNotFound = errors.New("roster row not found")
	// ErrRecordNotFound is returned when no current-state record exists for
	// a canonical id.
	ErrRecordNotFound = errors.New("current-state record not found")
)

// RosterStore holds the operator-maintained roster rows. Rows are updated in
// place, keyed by their row number; nothing ever deletes a row.
type RosterStore interface {
	ListRows(ctx context.Context) ([]domain.RosterRow, error)
	GetRow(ctx context.Context, num int) (domain.RosterRow, error)
	UpdateRow(ctx context.Context, row domain.RosterRow) error
	ReplaceAll(ctx context.Context, rows []domain.RosterRow) error
}

// CurrentStateStore holds at most one rating snapshot per canonical id.
type CurrentStateStore interface {
	Upsert(ctx context.Context, record domain.CurrentStateRecord) error
	Get(ctx context.Context, canonicalID string) (domain.CurrentStateRecord, error)
	List(ctx context.Context) ([]domain.CurrentStateRecord, error)
}

// HistoryStore is append-only; every successful match event adds a record.
type HistoryStore interface {
	Append(ctx context.Context, record domain.HistoryRecord) error
	List(ctx context.Context) ([]domain.HistoryRecord, error)
}

// Stores bundles the three views so wiring can hand them around together.
type Stores struct {
	Roster       RosterStore
	CurrentState CurrentStateStore
	History      HistoryStore
}
