package store

import (
	"context"
	"time"

	"github.com/journallm/journallm/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
type Store interface {
	Entries() Entries
	Close() error
}

// Entries persists journal entries together with their metrics, events and people.
type Entries interface {
	// ListBetween returns entries whose date lies in [start, end], ascending by date.
	ListBetween(ctx context.Context, start, end time.Time) ([]model.JournalEntry, error)
	// GetBySourcePath returns model.ErrNotFound when no entry was ingested from path.
	GetBySourcePath(ctx context.Context, path string) (*model.JournalEntry, error)
	// ReplaceForDate atomically removes entries sharing e's date or source path
	// and inserts e with its owned records.
	ReplaceForDate(ctx context.Context, e *model.JournalEntry) (*ReplaceResult, error)
	Delete(ctx context.Context, id int64) error
}

// ReplaceResult describes the outcome of ReplaceForDate.
type ReplaceResult struct {
	Entry    *model.JournalEntry
	Replaced []model.JournalEntry // removed rows (id, date, source path only)
}
