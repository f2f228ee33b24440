/*
Package storage implements the persistent record store for assessments.

Records live in a local key-value substrate under a single key, serialized as
a JSON array, the same layout a browser's local storage would hold. The
default substrate is SQLite at ~/.duriancare/store.db using modernc.org/sqlite
(a pure Go, CGo-free implementation).

If the database cannot be opened the substrate is disabled: reads degrade to
empty and writes return ErrStorageUnavailable.
*/
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Substrate is a synchronous string key-value store.
type Substrate interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Clear removes every key.
	Clear() error
}

// SQLiteKV implements Substrate using a single SQLite table.
type SQLiteKV struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	mu       sync.Mutex
	initOnce sync.Once
}

// DefaultDBPath returns ~/.duriancare/store.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".duriancare", "store.db"), nil
}

// NewSQLiteKV creates a SQLite substrate at dbPath.
//
// The database is not opened until Init is called. An empty path disables
// the substrate.
func NewSQLiteKV(dbPath string) *SQLiteKV {
	return &SQLiteKV{
		dbPath:  dbPath,
		enabled: dbPath != "",
	}
}

// Init opens the database and runs migrations.
//
// If initialization fails, the substrate is disabled and subsequent writes
// return ErrStorageUnavailable.
func (s *SQLiteKV) Init() error {
	if !s.enabled {
		return ErrStorageUnavailable
	}

	var initErr error
	s.initOnce.Do(func() {
		// Ensure directory exists
		dbDir := filepath.Dir(s.dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
	})

	if initErr != nil {
		return errors.Join(ErrStorageUnavailable, initErr)
	}
	if !s.enabled {
		return ErrStorageUnavailable
	}
	return nil
}

// Enabled reports whether the database is usable.
func (s *SQLiteKV) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled && s.db != nil
}

// Path returns the database file path.
func (s *SQLiteKV) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteKV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	s.enabled = false
	return nil
}
