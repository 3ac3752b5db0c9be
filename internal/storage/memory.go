package storage

import (
	"context"
	"sort"
	"sync"

	"dupr-sync-service/internal/domain"
)

// MemoryStore keeps all three views in process memory. It backs local runs
// and tests; production deployments use the postgres stores instead.
type MemoryStore struct {
	mu      sync.RWMutex
	rows    map[int]domain.RosterRow
	current map[string]domain.CurrentStateRecord
	history []domain.HistoryRecord
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:    make(map[int]domain.RosterRow),
		current: make(map[string]domain.CurrentStateRecord),
	}
}

// ListRows returns all roster rows ordered by row number.
func (s *MemoryStore) ListRows(ctx context.Context) ([]domain.RosterRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.RosterRow, 0, len(s.rows))
	for _, row := range s.rows {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Num < rows[j].Num })
	return rows, nil
}

func (s *MemoryStore) GetRow(ctx context.Context, num int) (domain.RosterRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[num]
	if !ok {
		return domain.RosterRow{}, ErrRowNotFound
	}
	return row, nil
}

// UpdateRow writes back a row previously read from the store. Updating a row
// number that was never loaded is a programming error and fails.
func (s *MemoryStore) UpdateRow(ctx context.Context, row domain.RosterRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[row.Num]; !ok {
		return ErrRowNotFound
	}
	s.rows[row.Num] = row
	return nil
}

// ReplaceAll swaps in a freshly imported roster, discarding the old rows.
func (s *MemoryStore) ReplaceAll(ctx context.Context, rows []domain.RosterRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = make(map[int]domain.RosterRow, len(rows))
	for _, row := range rows {
		s.rows[row.Num] = row
	}
	return nil
}

// Upsert inserts or overwrites the snapshot for the record's canonical id.
func (s *MemoryStore) Upsert(ctx context.Context, record domain.CurrentStateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current[record.CanonicalID] = record
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, canonicalID string) (domain.CurrentStateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.current[canonicalID]
	if !ok {
		return domain.CurrentStateRecord{}, ErrRecordNotFound
	}
	return record, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]domain.CurrentStateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.CurrentStateRecord, 0, len(s.current))
	for _, record := range s.current {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CanonicalID < records[j].CanonicalID })
	return records, nil
}

// Append adds one history entry; nothing ever rewrites the series.
func (s *MemoryStore) Append(ctx context.Context, record domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, record)
	return nil
}

// ListHistory returns the history series in insertion order.
func (s *MemoryStore) ListHistory(ctx context.Context) ([]domain.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.HistoryRecord, len(s.history))
	copy(records, s.history)
	return records, nil
}

// Views exposes the single memory store as the three view interfaces.
func (s *MemoryStore) Views() Stores {
	return Stores{
		Roster:       s,
		CurrentState: s,
		History:      memoryHistory{s},
	}
}

// memoryHistory adapts MemoryStore to HistoryStore; List on the combined
// store already names the current-state accessor.
type memoryHistory struct {
	store *MemoryStore
}

func (h memoryHistory) Append(ctx context.Context, record domain.HistoryRecord) error {
	return h.store.Append(ctx, record)
}

func (h memoryHistory) List(ctx context.Context) ([]domain.HistoryRecord, error) {
	return h.store.ListHistory(ctx)
}
