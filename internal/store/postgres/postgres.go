// Package postgres is the PostgreSQL journal store, selected with
// JOURNAL_DB_DRIVER=postgres.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/journallm/journallm/internal/store"
	"github.com/journallm/journallm/internal/store/sqlstore"
)

//go:embed schema.sql
var schema string

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
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

// New opens dsn, applies the schema and returns the store.
func New(ctx context.Context, dsn string) (store.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return sqlstore.New(db, sqlstore.Dollar) }
