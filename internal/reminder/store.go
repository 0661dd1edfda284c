package reminder

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store provides SQLite-backed persistence for reminder records. It is the
// single source of truth for status; everything the scheduler holds in
// memory is a cache over this table.
type Store struct {
	db *sql.DB
}

// NewStore ensures the reminders table exists on the shared database.
func NewStore(db *sql.DB) (*Store, error) {
	if err := createTable(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func createTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id               TEXT    PRIMARY KEY,
			kind             TEXT    NOT NULL,
			description      TEXT    NOT NULL DEFAULT '',
			created_at       TEXT    NOT NULL,
			due_at           TEXT    NOT NULL,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			status           TEXT    NOT NULL DEFAULT 'pending'
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create reminders table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_reminders_due_at ON reminders(due_at)`); err != nil {
		return fmt.Errorf("failed to create due_at index: %w", err)
	}
	return nil
}

// Insert writes a new record. ErrDuplicateID is returned when the id
// already exists, regardless of that record's status.
func (s *Store) Insert(r *Record) error {
	_, err := s.db.Exec(`
		INSERT INTO reminders (id, kind, description, created_at, due_at, duration_seconds, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Kind, r.Description,
		r.CreatedAt.UTC().Format(time.RFC3339), r.DueAt.UTC().Format(time.RFC3339),
		r.DurationSeconds, r.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// FetchPending returns every pending record ordered by due time. Used for
// startup recovery and listing.
func (s *Store) FetchPending() ([]*Record, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, description, created_at, due_at, duration_seconds, status
		FROM reminders WHERE status = ? ORDER BY due_at ASC
	`, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending reminders: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Get returns the record for id or ErrNotFound.
func (s *Store) Get(id string) (*Record, error) {
	row := s.db.QueryRow(`
		SELECT id, kind, description, created_at, due_at, duration_seconds, status
		FROM reminders WHERE id = ?
	`, id)

	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return r, nil
}

// MarkCompleted transitions a pending record to completed. It reports
// false without error when the record is absent or already terminal, so
// racing completion paths collapse to a single winner.
func (s *Store) MarkCompleted(id string) (bool, error) {
	result, err := s.db.Exec(`
		UPDATE reminders SET status = ? WHERE id = ? AND status = ?
	`, StatusCompleted, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to complete reminder: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// MarkCancelled transitions a pending record to cancelled. Like
// MarkCompleted it reports false for an already-terminal record, but an id
// that never existed returns ErrNotFound.
func (s *Store) MarkCancelled(id string) (bool, error) {
	result, err := s.db.Exec(`
		UPDATE reminders SET status = ? WHERE id = ? AND status = ?
	`, StatusCancelled, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to cancel reminder: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	if _, err := s.Get(id); err != nil {
		return false, err
	}
	return false, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var r Record
	var createdAt, dueAt string

	if err := row.Scan(&r.ID, &r.Kind, &r.Description, &createdAt, &dueAt, &r.DurationSeconds, &r.Status); err != nil {
		return nil, err
	}

	var err error
	if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if r.DueAt, err = time.Parse(time.RFC3339, dueAt); err != nil {
		return nil, fmt.Errorf("failed to parse due_at: %w", err)
	}

	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}
	return records, nil
}
