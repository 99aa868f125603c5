package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journallm/journallm/internal/model"
	"github.com/journallm/journallm/internal/store"
	"github.com/journallm/journallm/internal/store/sqlite"
)

type fakeExtractor struct {
	calls int
	fail  map[string]bool // journal text -> fail
}

func (f *fakeExtractor) Extract(_ context.Context, text string) (*model.Extraction, error) {
	f.calls++
	if f.fail[text] {
		return nil, errors.New("failed to parse extraction JSON")
	}
	return &model.Extraction{
		Summary: "summary: " + text, MoodScore: 6, EnergyScore: 5, StressScore: 4, SleepHours: 7.5,
		Events: []model.Event{{Description: "Lunch with Sam", Category: model.CategorySocial, People: []string{"Sam"}}},
	}, nil
}

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "journals.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestInferDate(t *testing.T) {
	d, ok := InferDate("/notes/2024/2024-03-05-morning.md")
	require.True(t, ok)
	assert.Equal(t, "2024-03-05", d.Format(model.DateLayout))

	_, ok = InferDate("/notes/2024-03-05/readme.md")
	assert.False(t, ok, "only the file name is searched")

	_, ok = InferDate("2024-13-45.md")
	assert.False(t, ok)
}

func TestResolveDate(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	d, err := ResolveDate("2024-01-02", "2023-05-05.md", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", d.Format(model.DateLayout))

	d, err = ResolveDate("", "2023-05-05.md", now)
	require.NoError(t, err)
	assert.Equal(t, "2023-05-05", d.Format(model.DateLayout))

	d, err = ResolveDate("", "notes.md", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", d.Format(model.DateLayout))

	_, err = ResolveDate("yesterday", "notes.md", now)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestIngestFile_StoresAndSkipsUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	ex := &fakeExtractor{}
	ing := New(s.Entries(), ex, zerolog.Nop())
	dir := t.TempDir()
	path := writeFile(t, dir, "2024-02-01.md", "Had lunch with Sam.")
	date, _ := InferDate(path)

	out, err := ing.IngestFile(ctx, path, date, Options{SkipIfUnchanged: true})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIngested, out)

	entries, err := s.Entries().ListBetween(ctx, date, date)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "summary: Had lunch with Sam.", *entries[0].Summary)
	assert.Equal(t, HashContent([]byte("Had lunch with Sam.")), *entries[0].FileHash)
	assert.Equal(t, []string{"Sam"}, entries[0].Events[0].People)

	out, err = ing.IngestFile(ctx, path, date, Options{SkipIfUnchanged: true})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.Equal(t, 1, ex.calls)

	out, err = ing.IngestFile(ctx, path, date, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIngested, out)
	assert.Equal(t, 2, ex.calls)
}

func TestIngestFile_ExtractionFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	ing := New(s.Entries(), &fakeExtractor{fail: map[string]bool{"bad": true}}, zerolog.Nop())
	path := writeFile(t, t.TempDir(), "2024-02-02.md", "bad")
	date, _ := InferDate(path)

	out, err := ing.IngestFile(ctx, path, date, Options{})
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, out)

	out, err = ing.IngestFile(ctx, filepath.Join(t.TempDir(), "2024-02-02-missing.md"), date, Options{})
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, out)
	assert.Equal(t, "failed", out.String())

	entries, err := s.Entries().ListBetween(ctx, date, date)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIngestFile_SameDateDifferentFileReplaces(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	ing := New(s.Entries(), &fakeExtractor{}, zerolog.Nop())
	dir := t.TempDir()
	a := writeFile(t, dir, "a/2024-02-03.md", "first")
	b := writeFile(t, dir, "b/2024-02-03-evening.md", "second")
	date, _ := InferDate(a)

	_, err := ing.IngestFile(ctx, a, date, Options{})
	require.NoError(t, err)
	_, err = ing.IngestFile(ctx, b, date, Options{})
	require.NoError(t, err)

	entries, err := s.Entries().ListBetween(ctx, date, date)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "summary: second", *entries[0].Summary)
}

func TestIngestDirectory(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	ex := &fakeExtractor{fail: map[string]bool{"broken": true}}
	ing := New(s.Entries(), ex, zerolog.Nop())
	dir := t.TempDir()
	writeFile(t, dir, "2024-01-02.md", "two")
	writeFile(t, dir, "sub/2024-01-01.md", "one")
	writeFile(t, dir, "2024-01-03.md", "broken")
	writeFile(t, dir, "ideas.md", "no date")
	writeFile(t, dir, "2024-01-04.txt", "not markdown")

	sum, err := ing.IngestDirectory(ctx, dir, Options{SkipIfUnchanged: true})
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 2, Skipped: 1, Errors: 1}, sum)

	sum, err = ing.IngestDirectory(ctx, dir, Options{SkipIfUnchanged: true})
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 0, Skipped: 3, Errors: 1}, sum)

	start, _ := model.ParseDate("2024-01-01")
	end, _ := model.ParseDate("2024-01-31")
	entries, err := s.Entries().ListBetween(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2024-01-01", entries[0].DateString())
}

func TestOutcome_ZeroValueIsFailed(t *testing.T) {
	var o Outcome
	assert.Equal(t, OutcomeFailed, o)
	assert.Equal(t, "ingested", OutcomeIngested.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
}

func TestIngestDirectory_Empty(t *testing.T) {
	ing := New(newStore(t).Entries(), &fakeExtractor{}, zerolog.Nop())
	sum, err := ing.IngestDirectory(context.Background(), t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}
