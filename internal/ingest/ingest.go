// Package ingest reads journal files, extracts metadata and replaces the
// stored entry for the file's date.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/journallm/journallm/internal/model"
	"github.com/journallm/journallm/internal/store"
)

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Extractor produces structured metadata for journal text.
type Extractor interface {
	Extract(ctx context.Context, text string) (*model.Extraction, error)
}

// Outcome reports what IngestFile did.
type Outcome int

const (
	// OutcomeFailed is returned alongside every error.
	OutcomeFailed Outcome = iota
	OutcomeIngested
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIngested:
		return "ingested"
	case OutcomeSkipped:
		return "skipped"
	}
	return "failed"
}

type Options struct {
	// SkipIfUnchanged skips files whose stored hash matches the current content.
	SkipIfUnchanged bool
}

type Ingester struct {
	store     store.Entries
	extractor Extractor
	log       zerolog.Logger
	now       func() time.Time
}

func New(entries store.Entries, extractor Extractor, log zerolog.Logger) *Ingester {
	return &Ingester{store: entries, extractor: extractor, log: log, now: time.Now}
}

// InferDate returns the first YYYY-MM-DD found in the file name.
func InferDate(path string) (time.Time, bool) {
	m := datePattern.FindString(filepath.Base(path))
	if m == "" {
		return time.Time{}, false
	}
	d, err := model.ParseDate(m)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ResolveDate picks the explicit date, then the file name date, then today.
func ResolveDate(explicit, path string, now time.Time) (time.Time, error) {
	if explicit != "" {
		d, err := model.ParseDate(explicit)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", explicit, model.ErrValidation)
		}
		return d, nil
	}
	if d, ok := InferDate(path); ok {
		return d, nil
	}
	return model.Day(now), nil
}

// HashContent is the hex sha256 stored as the entry fingerprint.
func HashContent(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// IngestFile extracts metadata for path and stores it under date, replacing
// any entry for the same date. Extraction failure aborts before any write.
func (i *Ingester) IngestFile(ctx context.Context, path string, date time.Time, opts Options) (Outcome, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return OutcomeFailed, err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("read %s: %w", abs, err)
	}
	hash := HashContent(content)

	if opts.SkipIfUnchanged {
		existing, err := i.store.GetBySourcePath(ctx, abs)
		switch {
		case err == nil:
			if existing.FileHash != nil && *existing.FileHash == hash {
				i.log.Info().Str("path", abs).Msg("unchanged, skipping")
				return OutcomeSkipped, nil
			}
		case errors.Is(err, model.ErrNotFound):
		default:
			return OutcomeFailed, err
		}
	}

	text := string(content)
	ex, err := i.extractor.Extract(ctx, text)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("extract %s: %w", abs, err)
	}

	entry := BuildEntry(date, abs, hash, text, ex)
	entry.CreatedAt = i.now().UTC()
	res, err := i.store.ReplaceForDate(ctx, entry)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("store %s: %w", abs, err)
	}
	for _, old := range res.Replaced {
		if old.SourcePath != nil && *old.SourcePath != abs {
			// two files for one date: the later ingest wins
			i.log.Warn().
				Str("date", old.DateString()).
				Int64("replaced_id", old.ID).
				Str("replaced_path", *old.SourcePath).
				Str("path", abs).
				Msg("replacing entry ingested from a different file")
			continue
		}
		i.log.Info().Str("date", old.DateString()).Int64("replaced_id", old.ID).Str("path", abs).Msg("replacing existing entry")
	}
	i.log.Info().Str("date", res.Entry.DateString()).Str("path", abs).Int("events", len(res.Entry.Events)).Msg("ingested journal")
	return OutcomeIngested, nil
}

// BuildEntry maps an extraction onto a storable entry.
func BuildEntry(date time.Time, path, hash, text string, ex *model.Extraction) *model.JournalEntry {
	mood, energy, stress, sleep := ex.MoodScore, ex.EnergyScore, ex.StressScore, ex.SleepHours
	e := &model.JournalEntry{
		Date:       model.Day(date),
		RawText:    text,
		FileHash:   &hash,
		SourcePath: &path,
		Metrics: &model.EntryMetrics{
			MoodScore:   &mood,
			EnergyScore: &energy,
			StressScore: &stress,
			SleepHours:  &sleep,
		},
		Events: ex.Events,
	}
	if ex.Summary != "" {
		s := ex.Summary
		e.Summary = &s
	}
	return e
}
