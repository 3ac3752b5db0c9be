package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"dupr-sync-service/internal/domain"
)

// Open connects to postgres and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the view tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS roster_rows (
			num INTEGER PRIMARY KEY,
			id_code TEXT NOT NULL DEFAULT '',
			full_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			prior_doubles TEXT NOT NULL DEFAULT '',
			prior_doubles_reliability TEXT NOT NULL DEFAULT '',
			prior_singles TEXT NOT NULL DEFAULT '',
			prior_singles_reliability TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			dupr_id TEXT NOT NULL DEFAULT '',
			dupr_rating TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'PENDING',
			last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS current_ratings (
			canonical_id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			doubles_rating TEXT NOT NULL DEFAULT '',
			doubles_reliability TEXT NOT NULL DEFAULT '',
			singles_rating TEXT NOT NULL DEFAULT '',
			singles_reliability TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS rating_history (
			id BIGSERIAL PRIMARY KEY,
			recorded_at TIMESTAMPTZ NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			canonical_id TEXT NOT NULL DEFAULT '',
			doubles_rating TEXT NOT NULL DEFAULT '',
			singles_rating TEXT NOT NULL DEFAULT '',
			full_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			age INTEGER NOT NULL DEFAULT 0,
			gender TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// NewPostgresStores builds the three view stores on one connection pool.
func NewPostgresStores(db *sql.DB) Stores {
	return Stores{
		Roster:       &postgresRosterStore{db: db},
		CurrentState: &postgresCurrentStateStore{db: db},
		History:      &postgresHistoryStore{db: db},
	}
}

type postgresRosterStore struct {
	db *sql.DB
}

const rosterColumns = `num, id_code, full_name, email, phone,
	prior_doubles, prior_doubles_reliability, prior_singles, prior_singles_reliability,
	notes, dupr_id, dupr_rating, status, last_updated`

func (s *postgresRosterStore) ListRows(ctx context.Context) ([]domain.RosterRow, error) {
	query := `SELECT ` + rosterColumns + ` FROM roster_rows ORDER BY num`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list roster rows: %w", err)
	}
	defer rows.Close()

	var result []domain.RosterRow
	for rows.Next() {
		row, err := scanRosterRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan roster row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster rows: %w", err)
	}
	return result, nil
}

func (s *postgresRosterStore) GetRow(ctx context.Context, num int) (domain.RosterRow, error) {
	query := `SELECT ` + rosterColumns + ` FROM roster_rows WHERE num = $1`
	row, err := scanRosterRow(s.db.QueryRowContext(ctx, query, num))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RosterRow{}, ErrRowNotFound
	}
	if err != nil {
		return domain.RosterRow{}, fmt.Errorf("get roster row %d: %w", num, err)
	}
	return row, nil
}

func (s *postgresRosterStore) UpdateRow(ctx context.Context, row domain.RosterRow) error {
	query := `UPDATE roster_rows SET
		id_code = $2, full_name = $3, email = $4, phone = $5,
		prior_doubles = $6, prior_doubles_reliability = $7,
		prior_singles = $8, prior_singles_reliability = $9,
		notes = $10, dupr_id = $11, dupr_rating = $12, status = $13, last_updated = $14
		WHERE num = $1`
	result, err := s.db.ExecContext(ctx, query,
		row.Num, row.IDCode, row.FullName, row.Email, row.Phone,
		row.PriorDoubles, row.PriorDoublesRel, row.PriorSingles, row.PriorSinglesRel,
		row.Notes, row.DuprID, row.DuprRating, string(row.Status), row.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("update roster row %d: %w", row.Num, err)
	}
	return checkAffectedRows(result, ErrRowNotFound)
}

func (s *postgresRosterStore) ReplaceAll(ctx context.Context, rosterRows []domain.RosterRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace roster: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM roster_rows`); err != nil {
		return fmt.Errorf("replace roster: clear rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO roster_rows (`+rosterColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`)
	if err != nil {
		return fmt.Errorf("replace roster: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rosterRows {
		_, err := stmt.ExecContext(ctx,
			row.Num, row.IDCode, row.FullName, row.Email, row.Phone,
			row.PriorDoubles, row.PriorDoublesRel, row.PriorSingles, row.PriorSinglesRel,
			row.Notes, row.DuprID, row.DuprRating, string(row.Status), row.LastUpdated,
		)
		if err != nil {
			return fmt.Errorf("replace roster: insert row %d: %w", row.Num, err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRosterRow(scanner rowScanner) (domain.RosterRow, error) {
	var row domain.RosterRow
	var status string
	err := scanner.Scan(
		&row.Num, &row.IDCode, &row.FullName, &row.Email, &row.Phone,
		&row.PriorDoubles, &row.PriorDoublesRel, &row.PriorSingles, &row.PriorSinglesRel,
		&row.Notes, &row.DuprID, &row.DuprRating, &status, &row.LastUpdated,
	)
	if err != nil {
		return domain.RosterRow{}, err
	}
	row.Status = domain.RowStatus(status)
	return row, nil
}

type postgresCurrentStateStore struct {
	db *sql.DB
}

func (s *postgresCurrentStateStore) Upsert(ctx context.Context, record domain.CurrentStateRecord) error {
	query := `INSERT INTO current_ratings
		(canonical_id, full_name, email, phone,
		 doubles_rating, doubles_reliability, singles_rating, singles_reliability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (canonical_id) DO UPDATE SET
		full_name = EXCLUDED.full_name, email = EXCLUDED.email, phone = EXCLUDED.phone,
		doubles_rating = EXCLUDED.doubles_rating, doubles_reliability = EXCLUDED.doubles_reliability,
		singles_rating = EXCLUDED.singles_rating, singles_reliability = EXCLUDED.singles_reliability`
	_, err := s.db.ExecContext(ctx, query,
		record.CanonicalID, record.FullName, record.Email, record.Phone,
		record.DoublesRating, record.DoublesReliability, record.SinglesRating, record.SinglesReliability,
	)
	if err != nil {
		return fmt.Errorf("upsert current rating %s: %w", record.CanonicalID, err)
	}
	return nil
}

func (s *postgresCurrentStateStore) Get(ctx context.Context, canonicalID string) (domain.CurrentStateRecord, error) {
	query := `SELECT canonical_id, full_name, email, phone,
		doubles_rating, doubles_reliability, singles_rating, singles_reliability
		FROM current_ratings WHERE canonical_id = $1`
	var record domain.CurrentStateRecord
	err := s.db.QueryRowContext(ctx, query, canonicalID).Scan(
		&record.CanonicalID, &record.FullName, &record.Email, &record.Phone,
		&record.DoublesRating, &record.DoublesReliability, &record.SinglesRating, &record.SinglesReliability,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CurrentStateRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return domain.CurrentStateRecord{}, fmt.Errorf("get current rating %s: %w", canonicalID, err)
	}
	return record, nil
}

func (s *postgresCurrentStateStore) List(ctx context.Context) ([]domain.CurrentStateRecord, error) {
	query := `SELECT canonical_id, full_name, email, phone,
		doubles_rating, doubles_reliability, singles_rating, singles_reliability
		FROM current_ratings ORDER BY canonical_id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list current ratings: %w", err)
	}
	defer rows.Close()

	var records []domain.CurrentStateRecord
	for rows.Next() {
		var record domain.CurrentStateRecord
		err := rows.Scan(
			&record.CanonicalID, &record.FullName, &record.Email, &record.Phone,
			&record.DoublesRating, &record.DoublesReliability, &record.SinglesRating, &record.SinglesReliability,
		)
		if err != nil {
			return nil, fmt.Errorf("scan current rating: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate current ratings: %w", err)
	}
	return records, nil
}

type postgresHistoryStore struct {
	db *sql.DB
}

func (s *postgresHistoryStore) Append(ctx context.Context, record domain.HistoryRecord) error {
	query := `INSERT INTO rating_history
		(recorded_at, first_name, last_name, canonical_id,
		 doubles_rating, singles_rating, full_name, email, phone, age, gender)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.db.ExecContext(ctx, query,
		record.Timestamp, record.FirstName, record.LastName, record.CanonicalID,
		record.DoublesRating, record.SinglesRating, record.FullName,
		record.Email, record.Phone, record.Age, record.Gender,
	)
	if err != nil {
		return fmt.Errorf("append rating history %s: %w", record.CanonicalID, err)
	}
	return nil
}

func (s *postgresHistoryStore) List(ctx context.Context) ([]domain.HistoryRecord, error) {
	query := `SELECT recorded_at, first_name, last_name, canonical_id,
		doubles_rating, singles_rating, full_name, email, phone, age, gender
		FROM rating_history ORDER BY recorded_at, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rating history: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var record domain.HistoryRecord
		err := rows.Scan(
			&record.Timestamp, &record.FirstName, &record.LastName, &record.CanonicalID,
			&record.DoublesRating, &record.SinglesRating, &record.FullName,
			&record.Email, &record.Phone, &record.Age, &record.Gender,
		)
		if err != nil {
			return nil, fmt.Errorf("scan rating history: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating history: %w", err)
	}
	return records, nil
}

func checkAffectedRows(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check affected rows: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
