// Package sqlstore implements store.Store on database/sql. SQL is written with
// '?' placeholders and rebound for drivers that use numbered parameters.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/journallm/journallm/internal/model"
	"github.com/journallm/journallm/internal/store"
)

// Placeholder selects the bind parameter syntax of the driver.
type Placeholder int

const (
	Question Placeholder = iota // sqlite: ?
	Dollar                      // postgres: $1, $2, ...
)

// Store is a database/sql backed store.Store.
type Store struct {
	db *sql.DB
	ph Placeholder
}

// New wraps an open connection. The schema must already exist.
func New(db *sql.DB, ph Placeholder) *Store { return &Store{db: db, ph: ph} }

func (s *Store) Entries() store.Entries { return &entries{db: s.db, ph: s.ph} }

// DB exposes the underlying connection (schema setup, tests).
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// HealthPing implements health.HealthPinger.
func (s *Store) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type entries struct {
	db *sql.DB
	ph Placeholder
}

func (r *entries) bind(q string) string { return Rebind(r.ph, q) }

// Rebind rewrites '?' placeholders for the given syntax.
func Rebind(ph Placeholder, q string) string {
	if ph != Dollar {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (r *entries) ListBetween(ctx context.Context, start, end time.Time) ([]model.JournalEntry, error) {
	return r.load(ctx, r.db, "e.entry_date BETWEEN ? AND ?", start.Format(model.DateLayout), end.Format(model.DateLayout))
}

func (r *entries) GetBySourcePath(ctx context.Context, path string) (*model.JournalEntry, error) {
	out, err := r.load(ctx, r.db, "e.source_path = ?", path)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("entry for %s: %w", path, model.ErrNotFound)
	}
	return &out[0], nil
}

func (r *entries) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	n, err := r.deleteEntry(ctx, tx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("entry %d: %w", id, model.ErrNotFound)
	}
	return tx.Commit()
}

func (r *entries) ReplaceForDate(ctx context.Context, e *model.JournalEntry) (*store.ReplaceResult, error) {
	if e == nil {
		return nil, fmt.Errorf("nil entry: %w", model.ErrValidation)
	}
	date := e.Date.Format(model.DateLayout)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := r.matching(ctx, tx, date, e.SourcePath)
	if err != nil {
		return nil, err
	}
	for _, old := range existing {
		if _, err := r.deleteEntry(ctx, tx, old.ID); err != nil {
			return nil, err
		}
	}

	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	var id int64
	err = tx.QueryRowContext(ctx, r.bind(`
        INSERT INTO journal_entries (entry_date, source_path, file_hash, raw_text, created_at)
        VALUES (?,?,?,?,?)
        RETURNING id`), date, e.SourcePath, e.FileHash, e.RawText, created).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	if e.Metrics != nil || e.Summary != nil {
		m := e.Metrics
		if m == nil {
			m = &model.EntryMetrics{}
		}
		if _, err := tx.ExecContext(ctx, r.bind(`
            INSERT INTO journal_metadata (entry_id, summary, mood_score, energy_score, stress_score, sleep_hours)
            VALUES (?,?,?,?,?,?)`), id, e.Summary, m.MoodScore, m.EnergyScore, m.StressScore, m.SleepHours); err != nil {
			return nil, fmt.Errorf("insert metadata: %w", err)
		}
	}

	events := make([]model.Event, len(e.Events))
	for i, ev := range e.Events {
		if ev.Category == "" {
			ev.Category = model.CategoryOther
		}
		var evID int64
		err := tx.QueryRowContext(ctx, r.bind(`
            INSERT INTO journal_events (entry_id, description, category, effect_on_mood)
            VALUES (?,?,?,?)
            RETURNING id`), id, ev.Description, string(ev.Category), ev.EffectOnMood).Scan(&evID)
		if err != nil {
			return nil, fmt.Errorf("insert event: %w", err)
		}
		for _, name := range ev.People {
			if _, err := tx.ExecContext(ctx, r.bind(`INSERT INTO journal_event_people (event_id, name) VALUES (?,?)`), evID, name); err != nil {
				return nil, fmt.Errorf("insert person: %w", err)
			}
		}
		ev.ID = evID
		events[i] = ev
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	out := *e
	out.ID = id
	out.Date = model.Day(e.Date)
	out.CreatedAt = created
	out.Events = events
	return &store.ReplaceResult{Entry: &out, Replaced: existing}, nil
}

// matching returns rows sharing the date or the source path.
func (r *entries) matching(ctx context.Context, q querier, date string, sourcePath *string) ([]model.JournalEntry, error) {
	query := `SELECT id, entry_date, source_path FROM journal_entries WHERE entry_date = ?`
	args := []any{date}
	if sourcePath != nil {
		query += ` OR source_path = ?`
		args = append(args, *sourcePath)
	}
	rows, err := q.QueryContext(ctx, r.bind(query+` ORDER BY id`), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.JournalEntry
	for rows.Next() {
		var (
			e    model.JournalEntry
			d    any
			path sql.NullString
		)
		if err := rows.Scan(&e.ID, &d, &path); err != nil {
			return nil, err
		}
		if e.Date, err = parseDateValue(d); err != nil {
			return nil, err
		}
		if path.Valid {
			p := path.String
			e.SourcePath = &p
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *entries) deleteEntry(ctx context.Context, q querier, id int64) (int64, error) {
	stmts := []string{
		`DELETE FROM journal_event_people WHERE event_id IN (SELECT id FROM journal_events WHERE entry_id = ?)`,
		`DELETE FROM journal_events WHERE entry_id = ?`,
		`DELETE FROM journal_metadata WHERE entry_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := q.ExecContext(ctx, r.bind(stmt), id); err != nil {
			return 0, err
		}
	}
	res, err := q.ExecContext(ctx, r.bind(`DELETE FROM journal_entries WHERE id = ?`), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// load reads entries matching where (a predicate over alias e) and attaches
// metadata, events and people. Each child query runs after the previous
// result set is closed so a single-connection pool never blocks.
func (r *entries) load(ctx context.Context, q querier, where string, args ...any) ([]model.JournalEntry, error) {
	rows, err := q.QueryContext(ctx, r.bind(`
        SELECT e.id, e.entry_date, e.source_path, e.file_hash, e.raw_text, e.created_at,
               m.id, m.summary, m.mood_score, m.energy_score, m.stress_score, m.sleep_hours
        FROM journal_entries e
        LEFT JOIN journal_metadata m ON m.entry_id = e.id
        WHERE `+where+`
        ORDER BY e.entry_date ASC, e.id ASC`), args...)
	if err != nil {
		return nil, err
	}

	var out []model.JournalEntry
	index := map[int64]int{}
	for rows.Next() {
		var (
			e                    model.JournalEntry
			d                    any
			path, hash, summary  sql.NullString
			metaID               sql.NullInt64
			mood, energy, stress sql.NullInt64
			sleep                sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &d, &path, &hash, &e.RawText, &e.CreatedAt,
			&metaID, &summary, &mood, &energy, &stress, &sleep); err != nil {
			_ = rows.Close()
			return nil, err
		}
		if e.Date, err = parseDateValue(d); err != nil {
			_ = rows.Close()
			return nil, err
		}
		e.SourcePath = nullString(path)
		e.FileHash = nullString(hash)
		if metaID.Valid {
			e.Summary = nullString(summary)
			e.Metrics = &model.EntryMetrics{
				MoodScore:   nullInt(mood),
				EnergyScore: nullInt(energy),
				StressScore: nullInt(stress),
			}
			if sleep.Valid {
				v := sleep.Float64
				e.Metrics.SleepHours = &v
			}
		}
		e.Events = []model.Event{}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()
	if len(out) == 0 {
		return out, nil
	}

	type eventRef struct{ entry, event int }
	events := map[int64]eventRef{}
	evRows, err := q.QueryContext(ctx, r.bind(`
        SELECT ev.id, ev.entry_id, ev.description, ev.category, ev.effect_on_mood
        FROM journal_events ev
        JOIN journal_entries e ON e.id = ev.entry_id
        WHERE `+where+`
        ORDER BY ev.id ASC`), args...)
	if err != nil {
		return nil, err
	}
	for evRows.Next() {
		var (
			ev       model.Event
			entryID  int64
			category string
		)
		if err := evRows.Scan(&ev.ID, &entryID, &ev.Description, &category, &ev.EffectOnMood); err != nil {
			_ = evRows.Close()
			return nil, err
		}
		i, ok := index[entryID]
		if !ok {
			continue
		}
		ev.Category = model.ParseCategory(category)
		ev.People = []string{}
		events[ev.ID] = eventRef{entry: i, event: len(out[i].Events)}
		out[i].Events = append(out[i].Events, ev)
	}
	if err := evRows.Err(); err != nil {
		_ = evRows.Close()
		return nil, err
	}
	_ = evRows.Close()
	if len(events) == 0 {
		return out, nil
	}

	pRows, err := q.QueryContext(ctx, r.bind(`
        SELECT p.event_id, p.name
        FROM journal_event_people p
        JOIN journal_events ev ON ev.id = p.event_id
        JOIN journal_entries e ON e.id = ev.entry_id
        WHERE `+where+`
        ORDER BY p.id ASC`), args...)
	if err != nil {
		return nil, err
	}
	defer pRows.Close()
	for pRows.Next() {
		var (
			eventID int64
			name    string
		)
		if err := pRows.Scan(&eventID, &name); err != nil {
			return nil, err
		}
		ref, ok := events[eventID]
		if !ok {
			continue
		}
		ev := &out[ref.entry].Events[ref.event]
		ev.People = append(ev.People, name)
	}
	return out, pRows.Err()
}

// parseDateValue accepts the representations drivers return for a date column.
func parseDateValue(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return model.Day(d), nil
	case string:
		return parseDateString(d)
	case []byte:
		return parseDateString(string(d))
	default:
		return time.Time{}, fmt.Errorf("unexpected entry_date type %T", v)
	}
}

func parseDateString(s string) (time.Time, error) {
	if len(s) >= len(model.DateLayout) {
		s = s[:len(model.DateLayout)]
	}
	t, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, errors.Join(fmt.Errorf("invalid entry_date %q", s), err)
	}
	return t, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
