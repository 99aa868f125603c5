package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/journallm/journallm/internal/model"
	"github.com/journallm/journallm/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// makeStore must return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("ReplaceAndList", func(t *testing.T) { testReplaceAndList(t, makeStore(t)) })
	t.Run("ReplaceSameDate", func(t *testing.T) { testReplaceSameDate(t, makeStore(t)) })
	t.Run("ReplaceSamePathNewDate", func(t *testing.T) { testReplaceSamePath(t, makeStore(t)) })
	t.Run("GetBySourcePath", func(t *testing.T) { testGetBySourcePath(t, makeStore(t)) })
	t.Run("DeleteCascades", func(t *testing.T) { testDelete(t, makeStore(t)) })
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }
func fp(f float64) *float64 { return &f }

func fullEntry(t *testing.T, date, path string) *model.JournalEntry {
	return &model.JournalEntry{
		Date:       day(t, date),
		RawText:    "text for " + date,
		SourcePath: strp(path),
		FileHash:   strp("hash-" + date),
		Summary:    strp("summary " + date),
		Metrics: &model.EntryMetrics{
			MoodScore:   intp(7),
			EnergyScore: intp(6),
			StressScore: intp(3),
			SleepHours:  fp(7.5),
		},
		Events: []model.Event{
			{Description: "Lunch with Sam", Category: model.CategorySocial, EffectOnMood: 2, People: []string{"Sam"}},
			{Description: "Code review", Category: model.CategoryWork, EffectOnMood: -1, People: []string{"Ana", "Bo"}},
		},
	}
}

func testReplaceAndList(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, d := range []string{"2024-01-03", "2024-01-01", "2024-01-02", "2024-02-01"} {
		if _, err := s.Entries().ReplaceForDate(ctx, fullEntry(t, d, "/j/"+d+".md")); err != nil {
			t.Fatalf("ReplaceForDate %s: %v", d, err)
		}
	}
	// metrics-less entry
	bare := &model.JournalEntry{Date: day(t, "2024-01-04"), RawText: "bare"}
	res, err := s.Entries().ReplaceForDate(ctx, bare)
	if err != nil {
		t.Fatalf("ReplaceForDate bare: %v", err)
	}
	if res.Entry.ID == 0 || len(res.Replaced) != 0 {
		t.Fatalf("bare insert: id=%d replaced=%d", res.Entry.ID, len(res.Replaced))
	}

	got, err := s.Entries().ListBetween(ctx, day(t, "2024-01-01"), day(t, "2024-01-31"))
	if err != nil {
		t.Fatalf("ListBetween: %v", err)
	}
	want := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}
	if len(got) != len(want) {
		t.Fatalf("ListBetween: n=%d want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.DateString() != want[i] {
			t.Fatalf("ListBetween[%d]: date=%s want %s", i, e.DateString(), want[i])
		}
	}

	first := got[0]
	if first.Summary == nil || *first.Summary != "summary 2024-01-01" {
		t.Fatalf("summary: %v", first.Summary)
	}
	if first.Metrics == nil || *first.Metrics.MoodScore != 7 || *first.Metrics.SleepHours != 7.5 {
		t.Fatalf("metrics: %+v", first.Metrics)
	}
	if len(first.Events) != 2 {
		t.Fatalf("events: n=%d", len(first.Events))
	}
	if first.Events[0].Description != "Lunch with Sam" || first.Events[0].Category != model.CategorySocial {
		t.Fatalf("event[0]: %+v", first.Events[0])
	}
	if len(first.Events[1].People) != 2 || first.Events[1].People[0] != "Ana" || first.Events[1].People[1] != "Bo" {
		t.Fatalf("event[1] people: %v", first.Events[1].People)
	}

	last := got[3]
	if last.Metrics != nil || last.Summary != nil || len(last.Events) != 0 {
		t.Fatalf("bare entry carried extras: %+v", last)
	}

	// single-day window
	one, err := s.Entries().ListBetween(ctx, day(t, "2024-02-01"), day(t, "2024-02-01"))
	if err != nil || len(one) != 1 {
		t.Fatalf("single day: n=%d err=%v", len(one), err)
	}

	none, err := s.Entries().ListBetween(ctx, day(t, "2023-01-01"), day(t, "2023-12-31"))
	if err != nil || len(none) != 0 {
		t.Fatalf("empty window: n=%d err=%v", len(none), err)
	}
}

func testReplaceSameDate(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.Entries().ReplaceForDate(ctx, fullEntry(t, "2024-03-01", "/a/day.md")); err != nil {
		t.Fatalf("first: %v", err)
	}
	second := fullEntry(t, "2024-03-01", "/b/day.md")
	second.Summary = strp("replacement")
	second.Events = second.Events[:1]
	res, err := s.Entries().ReplaceForDate(ctx, second)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if len(res.Replaced) != 1 || res.Replaced[0].SourcePath == nil || *res.Replaced[0].SourcePath != "/a/day.md" {
		t.Fatalf("replaced: %+v", res.Replaced)
	}

	got, err := s.Entries().ListBetween(ctx, day(t, "2024-03-01"), day(t, "2024-03-01"))
	if err != nil {
		t.Fatalf("ListBetween: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want exactly one entry per date, got %d", len(got))
	}
	if *got[0].Summary != "replacement" || len(got[0].Events) != 1 {
		t.Fatalf("replacement not stored: %+v", got[0])
	}
}

func testReplaceSamePath(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.Entries().ReplaceForDate(ctx, fullEntry(t, "2024-04-01", "/j/note.md")); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := s.Entries().ReplaceForDate(ctx, fullEntry(t, "2024-04-02", "/j/note.md")); err != nil {
		t.Fatalf("same path new date: %v", err)
	}
	got, err := s.Entries().ListBetween(ctx, day(t, "2024-04-01"), day(t, "2024-04-30"))
	if err != nil {
		t.Fatalf("ListBetween: %v", err)
	}
	if len(got) != 1 || got[0].DateString() != "2024-04-02" {
		t.Fatalf("same path must keep one row: %+v", got)
	}
}

func testGetBySourcePath(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.Entries().GetBySourcePath(ctx, "/missing.md"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("missing path: err=%v", err)
	}
	if _, err := s.Entries().ReplaceForDate(ctx, fullEntry(t, "2024-05-01", "/j/may.md")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := s.Entries().GetBySourcePath(ctx, "/j/may.md")
	if err != nil {
		t.Fatalf("GetBySourcePath: %v", err)
	}
	if got.FileHash == nil || *got.FileHash != "hash-2024-05-01" || got.DateString() != "2024-05-01" {
		t.Fatalf("GetBySourcePath: %+v", got)
	}
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	res, err := s.Entries().ReplaceForDate(ctx, fullEntry(t, "2024-06-01", "/j/june.md"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Entries().Delete(ctx, res.Entry.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Entries().Delete(ctx, res.Entry.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("second Delete: err=%v", err)
	}
	got, err := s.Entries().ListBetween(ctx, day(t, "2024-06-01"), day(t, "2024-06-01"))
	if err != nil || len(got) != 0 {
		t.Fatalf("after delete: n=%d err=%v", len(got), err)
	}
	// re-insert with the same path succeeds once owned rows are gone
	if _, err := s.Entries().ReplaceForDate(ctx, fullEntry(t, "2024-06-01", "/j/june.md")); err != nil {
		t.Fatalf("re-insert: %v", err)
	}
}
