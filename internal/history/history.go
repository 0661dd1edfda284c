// Package history persists assistant interactions so recent exchanges can
// be replayed as conversation context for follow-up questions.
package history

import (
	"database/sql"
	"fmt"
	"time"
)

// Interaction is one query/response exchange with the assistant.
type Interaction struct {
	ID        int64
	Query     string
	Response  string
	Timestamp time.Time
}

// Store records interactions on the shared database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore ensures the interactions table exists.
func NewStore(db *sql.DB) (*Store, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS interactions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			query     TEXT NOT NULL,
			response  TEXT NOT NULL,
			timestamp TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create interactions table: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Save appends one exchange.
func (s *Store) Save(query, response string) error {
	_, err := s.db.Exec(`
		INSERT INTO interactions (query, response, timestamp) VALUES (?, ?, ?)
	`, query, response, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}
	return nil
}

// Recent returns the latest n interactions, newest first.
func (s *Store) Recent(n int) ([]*Interaction, error) {
	rows, err := s.db.Query(`
		SELECT id, query, response, timestamp
		FROM interactions ORDER BY id DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}
	defer rows.Close()

	var interactions []*Interaction
	for rows.Next() {
		var it Interaction
		var ts string
		if err := rows.Scan(&it.ID, &it.Query, &it.Response, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		if it.Timestamp, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		interactions = append(interactions, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interactions: %w", err)
	}
	return interactions, nil
}
