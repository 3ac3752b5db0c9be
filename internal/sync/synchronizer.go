// Package sync walks the roster, matches each row against the rating
// service, records the match in the current-state and history views, and
// enrolls matched players in the club.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dupr-sync-service/internal/domain"
	"dupr-sync-service/internal/logging"
	"dupr-sync-service/internal/match"
	"dupr-sync-service/internal/metrics"
	"dupr-sync-service/internal/providers"
	"dupr-sync-service/internal/providers/courtside"
	"dupr-sync-service/internal/storage"
)

// FacilityLookup is the optional booking-facility rating lookup. Results are
// advisory; lookups never change a row's status.
type FacilityLookup interface {
	LookupUser(ctx context.Context, query string) (*courtside.UserRating, error)
}

// Config wires a Synchronizer.
type Config struct {
	Provider providers.PlayerProvider
	Stores   storage.Stores
	Facility FacilityLookup
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	RowDelay time.Duration
	Now      func() time.Time
}

// Synchronizer drives the roster reconciliation. Each row is processed
// independently; one bad row never stops the batch. Only a configuration
// failure (missing or rejected credentials) aborts a run.
type Synchronizer struct {
	provider providers.PlayerProvider
	identity *match.IdentityResolver
	stores   storage.Stores
	facility FacilityLookup
	logger   *slog.Logger
	metrics  *metrics.Recorder
	rowDelay time.Duration
	now      func() time.Time
}

// New constructs a Synchronizer.
func New(cfg Config) *Synchronizer {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Synchronizer{
		provider: cfg.Provider,
		identity: match.NewIdentityResolver(cfg.Provider, cfg.Logger),
		stores:   cfg.Stores,
		facility: cfg.Facility,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		rowDelay: cfg.RowDelay,
		now:      now,
	}
}

// RunBatch processes every roster row in order with a pause between rows.
// The returned error is non-nil only when the whole run aborted; per-row
// failures land in the report instead.
func (s *Synchronizer) RunBatch(ctx context.Context) (domain.Report, error) {
	started := s.now()
	report := domain.NewReport(started)

	runErr := s.runBatch(ctx, &report)
	report.Finished = s.now()
	if s.metrics != nil {
		s.metrics.RecordBatch(report.Finished.Sub(started), runErr)
	}
	if runErr != nil {
		logging.Error(logging.FromContext(ctx, s.logger), "batch run aborted", runErr)
		return report, runErr
	}

	logging.Info(logging.FromContext(ctx, s.logger), "batch run finished",
		logging.FieldCount, report.Processed(),
		"enrolled", report.Enrolled(),
		logging.FieldDurationMS, report.Finished.Sub(started).Milliseconds(),
	)
	return report, nil
}

func (s *Synchronizer) runBatch(ctx context.Context, report *domain.Report) error {
	if err := s.provider.EnsureAuth(ctx); err != nil {
		return fmt.Errorf("authenticating before batch: %w", err)
	}

	rows, err := s.stores.Roster.ListRows(ctx)
	if err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}

	for i, row := range rows {
		if i > 0 && s.rowDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.rowDelay):
			}
		}

		outcome, err := s.processRow(ctx, row)
		if err != nil {
			return err
		}
		report.Record(outcome)
	}
	return nil
}

// RunRow processes a single roster row by number.
func (s *Synchronizer) RunRow(ctx context.Context, num int) (domain.Report, error) {
	report := domain.NewReport(s.now())

	row, err := s.stores.Roster.GetRow(ctx, num)
	if err != nil {
		report.Finished = s.now()
		return report, err
	}
	if err := s.provider.EnsureAuth(ctx); err != nil {
		report.Finished = s.now()
		return report, fmt.Errorf("authenticating before row run: %w", err)
	}

	outcome, err := s.processRow(ctx, row)
	report.Finished = s.now()
	if err != nil {
		return report, err
	}
	report.Record(outcome)
	return report, nil
}

// RunFirst processes the first roster row.
func (s *Synchronizer) RunFirst(ctx context.Context) (domain.Report, error) {
	return s.runEdgeRow(ctx, true)
}

// RunLast processes the last roster row.
func (s *Synchronizer) RunLast(ctx context.Context) (domain.Report, error) {
	return s.runEdgeRow(ctx, false)
}

func (s *Synchronizer) runEdgeRow(ctx context.Context, first bool) (domain.Report, error) {
	report := domain.NewReport(s.now())

	rows, err := s.stores.Roster.ListRows(ctx)
	if err != nil {
		report.Finished = s.now()
		return report, fmt.Errorf("loading roster: %w", err)
	}
	if len(rows) == 0 {
		report.Finished = s.now()
		return report, storage.ErrRowNotFound
	}

	row := rows[0]
	if !first {
		row = rows[len(rows)-1]
	}
	if err := s.provider.EnsureAuth(ctx); err != nil {
		report.Finished = s.now()
		return report, fmt.Errorf("authenticating before row run: %w", err)
	}

	outcome, err := s.processRow(ctx, row)
	report.Finished = s.now()
	if err != nil {
		return report, err
	}
	report.Record(outcome)
	return report, nil
}

// processRow runs the full per-row pipeline. The returned error is non-nil
// only for configuration failures, which abort the whole run; every other
// failure becomes the row's status.
func (s *Synchronizer) processRow(ctx context.Context, row domain.RosterRow) (outcome domain.RowOutcome, runErr error) {
	logger := logging.FromContext(ctx, s.logger)

	defer func() {
		if r := recover(); r != nil {
			logging.Error(logger, "row processing panicked", fmt.Errorf("%v", r), logging.FieldRow, row.Num)
			outcome = s.finishRow(ctx, row, domain.StatusError, fmt.Sprintf("internal error: %v", r))
			runErr = nil
		}
	}()

	if row.Status == domain.StatusAddedToClub {
		// Re-runs must not re-invite players already in the club. The row
		// keeps its enrolled status; the skip still leaves an audit note.
		logging.Info(logger, "row already enrolled, skipping",
			logging.FieldRow, row.Num,
			logging.FieldPlayer, row.FullName,
		)
		at := s.now()
		row.LastUpdated = at
		row.AppendNote(at, "already added to club")
		if err := s.stores.Roster.UpdateRow(ctx, row); err != nil {
			logging.Error(logger, "roster row update failed", err, logging.FieldRow, row.Num)
		}
		outcome = domain.RowOutcome{Row: row.Num, FullName: row.FullName, Status: domain.StatusSkippedDuplicate, Detail: "already added to club"}
		s.recordOutcome(outcome.Status)
		return outcome, nil
	}

	if row.FullName == "" {
		return s.finishRow(ctx, row, domain.StatusSkippedNoName, "no name on row"), nil
	}

	// Single-token names still search, with an empty last name. Only a name
	// that yields no first token at all is unusable.
	firstName, lastName := domain.SplitName(row.FullName)
	if firstName == "" {
		return s.finishRow(ctx, row, domain.StatusSkippedBadName, fmt.Sprintf("cannot read a name from %q", row.FullName)), nil
	}

	candidates, err := s.provider.SearchPlayers(ctx, firstName, lastName)
	if err != nil {
		if errors.Is(err, providers.ErrConfiguration) {
			return domain.RowOutcome{}, err
		}
		logging.Error(logger, "player search failed", err,
			logging.FieldRow, row.Num,
			logging.FieldPlayer, row.FullName,
		)
		return s.finishRow(ctx, row, domain.StatusNotFound, fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(candidates) == 0 {
		return s.finishRow(ctx, row, domain.StatusNotFound, "no search results"), nil
	}

	candidate := match.SelectBestMatch(candidates, row.Email, row.Phone)

	// Views are written as soon as a candidate is chosen; enrollment failing
	// later must not lose the ratings we already have.
	s.recordMatch(ctx, &row, firstName, lastName, *candidate)
	s.compareFacilityRating(ctx, row, *candidate)

	numericID, ok := s.identity.ResolveNumericID(ctx, candidate)
	if !ok {
		return s.finishRow(ctx, row, domain.StatusMissingNumericID, "matched player has no numeric id"), nil
	}

	if err := s.provider.EnrollMembers(ctx, []int64{numericID}); err != nil {
		if errors.Is(err, providers.ErrConfiguration) {
			return domain.RowOutcome{}, err
		}
		logging.Error(logger, "club enrollment failed", err,
			logging.FieldRow, row.Num,
			logging.FieldPlayer, row.FullName,
			logging.FieldDuprID, candidate.RecordID(),
		)
		return s.finishRow(ctx, row, domain.StatusFoundNotAdded, fmt.Sprintf("enrollment failed: %v", err)), nil
	}

	return s.finishRow(ctx, row, domain.StatusAddedToClub, fmt.Sprintf("added %s to club", candidate.RecordID())), nil
}

// recordMatch stamps the row's rating columns and writes both views.
func (s *Synchronizer) recordMatch(ctx context.Context, row *domain.RosterRow, firstName, lastName string, candidate domain.Candidate) {
	logger := logging.FromContext(ctx, s.logger)

	row.DuprID = candidate.RecordID()
	row.DuprRating = candidate.DoublesOrNR()

	if err := s.stores.CurrentState.Upsert(ctx, domain.NewCurrentStateRecord(candidate, row.FullName)); err != nil {
		logging.Error(logger, "current-state upsert failed", err,
			logging.FieldRow, row.Num,
			logging.FieldDuprID, candidate.RecordID(),
		)
	}
	if err := s.stores.History.Append(ctx, domain.NewHistoryRecord(s.now(), firstName, lastName, candidate)); err != nil {
		logging.Error(logger, "history append failed", err,
			logging.FieldRow, row.Num,
			logging.FieldDuprID, candidate.RecordID(),
		)
	}
}

// compareFacilityRating logs how the booking facility's rating compares to
// the one just fetched. Advisory only.
func (s *Synchronizer) compareFacilityRating(ctx context.Context, row domain.RosterRow, candidate domain.Candidate) {
	if s.facility == nil {
		return
	}
	logger := logging.FromContext(ctx, s.logger)

	rating, err := s.facility.LookupUser(ctx, row.FullName)
	if err != nil {
		logging.Warn(logger, "facility rating lookup failed",
			logging.FieldRow, row.Num,
			logging.FieldPlayer, row.FullName,
			"error", err,
		)
		return
	}
	if rating == nil {
		return
	}
	logging.Info(logger, "facility rating comparison",
		logging.FieldRow, row.Num,
		logging.FieldPlayer, row.FullName,
		"facility_doubles", rating.Doubles,
		"service_doubles", candidate.DoublesOrNR(),
	)
}

// finishRow persists the row's new status with a timestamped note and
// returns the outcome.
func (s *Synchronizer) finishRow(ctx context.Context, row domain.RosterRow, status domain.RowStatus, detail string) domain.RowOutcome {
	logger := logging.FromContext(ctx, s.logger)
	at := s.now()

	row.Status = status
	row.LastUpdated = at
	row.AppendNote(at, detail)

	if err := s.stores.Roster.UpdateRow(ctx, row); err != nil {
		logging.Error(logger, "roster row update failed", err, logging.FieldRow, row.Num)
	}

	logging.Info(logger, "row processed",
		logging.FieldRow, row.Num,
		logging.FieldPlayer, row.FullName,
		logging.FieldRowStatus, string(status),
	)
	s.recordOutcome(status)

	return domain.RowOutcome{Row: row.Num, FullName: row.FullName, Status: status, Detail: detail}
}

func (s *Synchronizer) recordOutcome(status domain.RowStatus) {
	if s.metrics != nil {
		s.metrics.RecordRowOutcome(status)
	}
}
