// Package store persists bucket credentials, sync folder mappings, upload
// state and settings in a local SQLite database. It owns the connection
// pool; every other component reads and writes through its methods.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/tauri-drive/engine/internal/crypto"
)

//go:embed schema.sql
var schema string

// Store wraps the SQLite database holding all persistent application state.
// Credential key fields are encrypted with the local codec before they reach
// the database and decrypted on the way out.
type Store struct {
	db    *sql.DB
	codec *crypto.Codec
}

// Open opens the database at dbPath, creating the file and its directory if
// necessary, and initializes the schema. Safe to call on an existing
// database: all schema statements are idempotent.
func Open(dbPath string, codec *crypto.Codec) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, codec: codec}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// created_at was added to sync_folders after the first release. The
	// duplicate-column error on databases that already carry it is expected.
	if _, err := s.db.Exec("ALTER TABLE sync_folders ADD COLUMN created_at TEXT"); err != nil {
		if !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("failed to add created_at column: %w", err)
		}
	}

	return nil
}

// DB exposes the underlying connection pool so that the upload state manager
// can share it. Other components must go through Store methods.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
