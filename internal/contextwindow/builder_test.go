package contextwindow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journallm/journallm/internal/model"
)

type fakeLister struct {
	entries    []model.JournalEntry
	err        error
	start, end time.Time
}

func (f *fakeLister) ListBetween(_ context.Context, start, end time.Time) ([]model.JournalEntry, error) {
	f.start, f.end = start, end
	return f.entries, f.err
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }
func fp(f float64) *float64 { return &f }

func metrics(mood, energy, stress int, sleep float64) *model.EntryMetrics {
	return &model.EntryMetrics{MoodScore: intp(mood), EnergyScore: intp(energy), StressScore: intp(stress), SleepHours: fp(sleep)}
}

func TestWindow_FormatsCoverageAveragesAndNarrative(t *testing.T) {
	lister := &fakeLister{entries: []model.JournalEntry{
		{
			ID: 1, Date: date(t, "2024-02-01"), Summary: strp("Good day"), Metrics: metrics(7, 6, 3, 8),
			Events: []model.Event{
				{Description: "Lunch with Sam", Category: model.CategorySocial, People: []string{"Sam"}},
				{Description: "Gym", Category: model.CategoryHealth},
			},
		},
		{ID: 2, Date: date(t, "2024-02-02"), Metrics: metrics(6, 5, 4, 6.5)},
		{ID: 3, Date: date(t, "2024-02-03"), Summary: strp("Quiet"), Events: []model.Event{{Description: "Reading"}}},
	}}
	b := New(lister, nil)

	w, err := b.Window(context.Background(), date(t, "2024-02-01"), date(t, "2024-02-05"))
	require.NoError(t, err)

	want := strings.Join([]string{
		"Context window coverage: 2024-02-01 to 2024-02-03 (3 entries).",
		"Averages → Mood Score: 6.5 | Energy Score: 5.5 | Stress Score: 3.5 | Sleep Hours: 7.25",
		"- 2024-02-01: Good day | Key event: Lunch with Sam (people: Sam)",
		"- 2024-02-02: (no summary) | No events captured.",
		"- 2024-02-03: Quiet | Key event: Reading",
	}, "\n")
	if diff := cmp.Diff(want, w.Text); diff != "" {
		t.Fatalf("context text mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, w.Entries, 3)
	assert.Len(t, w.Entries[0].Events, 2, "structured list keeps every event")
	assert.Equal(t, date(t, "2024-02-01"), lister.start)
	assert.Equal(t, date(t, "2024-02-05"), lister.end)
}

func TestWindow_EmptyRangeNamesDates(t *testing.T) {
	b := New(&fakeLister{}, nil)
	w, err := b.Window(context.Background(), date(t, "2024-03-01"), date(t, "2024-03-07"))
	require.NoError(t, err)

	lines := strings.Split(w.Text, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "No journal entries stored between 2024-03-01 and 2024-03-07.", lines[0])
	assert.Equal(t, "Averages → No metrics available.", lines[1])
	assert.NotNil(t, w.Entries)
}

func TestAverages_ExcludeEntriesWithoutMetrics(t *testing.T) {
	got := Averages([]model.JournalEntry{
		{Metrics: metrics(4, 4, 4, 7)},
		{},
		{Metrics: metrics(9, 7, 2, 8)},
		{Metrics: &model.EntryMetrics{MoodScore: intp(5)}},
	})
	require.NotNil(t, got.MoodScore)
	assert.Equal(t, 6.0, *got.MoodScore)
	assert.Equal(t, 5.5, *got.EnergyScore)
	assert.Equal(t, 3.0, *got.StressScore)
	assert.Equal(t, 7.5, *got.SleepHours)
}

func TestAverages_NoMetricsIsUnavailable(t *testing.T) {
	got := Averages([]model.JournalEntry{{Summary: strp("a")}, {Summary: strp("b")}})
	assert.Nil(t, got.MoodScore)
	assert.Nil(t, got.EnergyScore)
	assert.Nil(t, got.StressScore)
	assert.Nil(t, got.SleepHours)
	assert.Equal(t, "No metrics available.", formatAverages(got))
}

func TestAverages_RoundsToTwoDecimals(t *testing.T) {
	got := Averages([]model.JournalEntry{
		{Metrics: metrics(7, 1, 1, 7)},
		{Metrics: metrics(6, 1, 1, 7)},
		{Metrics: metrics(6, 1, 1, 7)},
	})
	assert.Equal(t, 6.33, *got.MoodScore)
	assert.Equal(t, "Mood Score: 6.33 | Energy Score: 1.0 | Stress Score: 1.0 | Sleep Hours: 7.0", formatAverages(got))
}

func TestRecent(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 5, 20, 15, 4, 5, 0, time.UTC) }

	t.Run("empty", func(t *testing.T) {
		lister := &fakeLister{}
		w, err := New(lister, now).Recent(context.Background(), 14)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(w.Text, "No journal entries stored yet.\n"))
		assert.Equal(t, date(t, "2024-05-06"), lister.start)
		assert.Equal(t, date(t, "2024-05-20"), lister.end)
	})

	t.Run("coverage", func(t *testing.T) {
		lister := &fakeLister{entries: []model.JournalEntry{{Date: date(t, "2024-05-19")}}}
		w, err := New(lister, now).Recent(context.Background(), 3)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(w.Text, "Recent journal coverage: 2024-05-19 to 2024-05-19 (1 entries)."))
	})

	t.Run("invalid days", func(t *testing.T) {
		_, err := New(&fakeLister{}, now).Recent(context.Background(), 0)
		assert.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestWindow_PropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	_, err := New(&fakeLister{err: boom}, nil).Window(context.Background(), date(t, "2024-01-01"), date(t, "2024-01-02"))
	assert.ErrorIs(t, err, boom)
}
