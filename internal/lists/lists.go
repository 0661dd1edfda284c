// Package lists stores named item lists (shopping, todo, ...) on the
// shared database. Items live as a JSON array in the list's row; lists
// are small, so read-modify-write keeps the schema simple.
package lists

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrListNotFound is returned for operations on a list that was never
// created.
var ErrListNotFound = errors.New("list not found")

// ErrItemNotFound is returned when removing an item that is not on the
// list.
var ErrItemNotFound = errors.New("item not found")

// List is a named collection of items in insertion order.
type List struct {
	Name      string    `json:"name"`
	Items     []string  `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store provides SQLite-backed persistence for lists.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore ensures the lists table exists on the shared database.
func NewStore(db *sql.DB) (*Store, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS lists (
			name       TEXT PRIMARY KEY,
			items      TEXT NOT NULL DEFAULT '[]',
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create lists table: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// AddItem appends item to the named list, creating the list on first use.
// List names are case-insensitive and stored lowercased.
func (s *Store) AddItem(name, item string) error {
	name = normalize(name)
	item = strings.TrimSpace(item)
	if name == "" {
		return fmt.Errorf("list name must not be empty")
	}
	if item == "" {
		return fmt.Errorf("item must not be empty")
	}

	items, err := s.items(name)
	if err != nil && !errors.Is(err, ErrListNotFound) {
		return err
	}
	items = append(items, item)
	return s.write(name, items)
}

// RemoveItem deletes the first item matching value (case-insensitive).
func (s *Store) RemoveItem(name, item string) error {
	name = normalize(name)
	items, err := s.items(name)
	if err != nil {
		return err
	}

	want := strings.ToLower(strings.TrimSpace(item))
	for i, existing := range items {
		if strings.ToLower(existing) == want {
			items = append(items[:i], items[i+1:]...)
			return s.write(name, items)
		}
	}
	return fmt.Errorf("%w: %q is not on list %q", ErrItemNotFound, item, name)
}

// Items returns the named list's items, or ErrListNotFound.
func (s *Store) Items(name string) ([]string, error) {
	return s.items(normalize(name))
}

// All returns every list, name-ordered.
func (s *Store) All() ([]*List, error) {
	rows, err := s.db.Query(`SELECT name, items, updated_at FROM lists ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lists: %w", err)
	}
	defer rows.Close()

	var lists []*List
	for rows.Next() {
		var l List
		var itemsJSON, updatedAt string
		if err := rows.Scan(&l.Name, &itemsJSON, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &l.Items); err != nil {
			return nil, fmt.Errorf("failed to parse items for list %q: %w", l.Name, err)
		}
		if l.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		lists = append(lists, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lists: %w", err)
	}
	return lists, nil
}

// Delete removes the whole list.
func (s *Store) Delete(name string) error {
	result, err := s.db.Exec(`DELETE FROM lists WHERE name = ?`, normalize(name))
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrListNotFound
	}
	return nil
}

func (s *Store) items(name string) ([]string, error) {
	var itemsJSON string
	err := s.db.QueryRow(`SELECT items FROM lists WHERE name = ?`, name).Scan(&itemsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	var items []string
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return nil, fmt.Errorf("failed to parse items for list %q: %w", name, err)
	}
	return items, nil
}

func (s *Store) write(name string, items []string) error {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO lists (name, items, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET items = excluded.items, updated_at = excluded.updated_at
	`, name, string(itemsJSON), s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write list: %w", err)
	}
	return nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
