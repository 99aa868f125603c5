package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/journallm/journallm/internal/store"
	"github.com/journallm/journallm/internal/store/storetest"
)

func makeSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journals.db")
	s, err := New(context.Background(), path)
	if err != nil {
		t.Fatalf("sqlite open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Compliance(t *testing.T) {
	storetest.Run(t, makeSQLiteStore)
}

func TestSQLiteStore_InMemoryCompliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := New(context.Background(), ":memory:")
		if err != nil {
			t.Fatalf("sqlite memory open: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "journals.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(context.Background(), db); err != nil {
			t.Fatalf("ensure schema pass %d: %v", i, err)
		}
	}
}
