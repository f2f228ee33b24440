package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

// Get returns the value stored under key.
func (s *SQLiteKV) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return "", false, ErrStorageUnavailable
	}

	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, key, err)
	}

	return value, true, nil
}

// Set stores value under key.
func (s *SQLiteKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return ErrStorageUnavailable
	}

	query := `
		INSERT OR REPLACE INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.Exec(query, key, value, time.Now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorageUnavailable, key, err)
	}

	return nil
}

// Delete removes key.
func (s *SQLiteKV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return ErrStorageUnavailable
	}

	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStorageUnavailable, key, err)
	}

	return nil
}

// Clear removes every key and reclaims space.
func (s *SQLiteKV) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return ErrStorageUnavailable
	}

	if _, err := s.db.Exec("DELETE FROM kv"); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrStorageUnavailable, err)
	}

	// Vacuum to drop image blobs from the file
	if _, err := s.db.Exec("VACUUM"); err != nil {
		log.Printf("Warning: failed to vacuum database: %v", err)
	}

	return nil
}
