// Package settings persists grid view state per project and store key
// in a local SQLite database.
package settings

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no settings row exists for a key.
var ErrNotFound = errors.New("settings not found")

// Store persists panel settings using SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new settings store instance.
func NewStore() *Store {
	return &Store{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *Store) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open settings database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping settings database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema initializes the database schema.
func (s *Store) InitSchema() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Get retrieves the settings content for a project and store key.
// Returns ErrNotFound when no row exists.
func (s *Store) Get(projectID, storeKey string) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}

	var content string
	err := s.db.QueryRow(
		`SELECT content FROM panel_settings WHERE project_id = ? AND store_key = ?`,
		projectID, storeKey,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	return content, nil
}

// Put stores the settings content for a project and store key,
// replacing any existing row.
func (s *Store) Put(projectID, storeKey, content string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(
		`INSERT INTO panel_settings (id, project_id, store_key, content, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (project_id, store_key)
		 DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		uuid.New().String(), projectID, storeKey, content, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to put settings: %w", err)
	}
	return nil
}

// List returns the store keys saved for a project.
func (s *Store) List(projectID string) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT store_key FROM panel_settings WHERE project_id = ? ORDER BY store_key`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan settings row: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Delete removes the settings row for a project and store key.
func (s *Store) Delete(projectID, storeKey string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(
		`DELETE FROM panel_settings WHERE project_id = ? AND store_key = ?`,
		projectID, storeKey,
	)
	if err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}
