// Package sqlite is the embedded default journal store.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/journallm/journallm/internal/store"
	"github.com/journallm/journallm/internal/store/sqlstore"
)

//go:embed schema.sql
var schema string

// Open opens (or creates) a SQLite database at the given path with WAL journaling
// and foreign keys enabled.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	var dsn string
	if path == ":memory:" {
		// one connection so every query sees the same in-memory database
		dsn = "file::memory:?_pragma=foreign_keys(ON)"
	} else {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the journal tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	return sqlstore.ApplySchema(ctx, db, schema)
}

// New opens path, applies the schema and returns the store.
func New(ctx context.Context, path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an open connection that already carries the schema.
func NewWithDB(db *sql.DB) store.Store { return sqlstore.New(db, sqlstore.Question) }
