// Package contextwindow assembles journal entries in a date range into the
// aggregated text block handed to the chat backend.
package contextwindow

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/journallm/journallm/internal/model"
)

// EntryLister is the read side of the store used by the builder.
type EntryLister interface {
	ListBetween(ctx context.Context, start, end time.Time) ([]model.JournalEntry, error)
}

// Builder produces a fresh ContextWindow per call. It holds no mutable state.
type Builder struct {
	store EntryLister
	now   func() time.Time
}

// New returns a Builder reading from store. now defaults to time.Now.
func New(store EntryLister, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{store: store, now: now}
}

// Window aggregates entries dated within [start, end]. Callers reject start > end.
func (b *Builder) Window(ctx context.Context, start, end time.Time) (*model.ContextWindow, error) {
	start, end = model.Day(start), model.Day(end)
	entries, err := b.store.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list entries %s..%s: %w", start.Format(model.DateLayout), end.Format(model.DateLayout), err)
	}
	var coverage string
	if len(entries) > 0 {
		coverage = fmt.Sprintf("Context window coverage: %s to %s (%d entries).",
			entries[0].DateString(), entries[len(entries)-1].DateString(), len(entries))
	} else {
		coverage = fmt.Sprintf("No journal entries stored between %s and %s.",
			start.Format(model.DateLayout), end.Format(model.DateLayout))
	}
	return assemble(start, end, entries, coverage), nil
}

// Recent aggregates entries dated within [today-days, today].
func (b *Builder) Recent(ctx context.Context, days int) (*model.ContextWindow, error) {
	if days < 1 {
		return nil, fmt.Errorf("days must be >= 1, got %d: %w", days, model.ErrValidation)
	}
	end := model.Day(b.now())
	start := end.AddDate(0, 0, -days)
	entries, err := b.store.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list recent entries (%d days): %w", days, err)
	}
	coverage := "No journal entries stored yet."
	if len(entries) > 0 {
		coverage = fmt.Sprintf("Recent journal coverage: %s to %s (%d entries).",
			entries[0].DateString(), entries[len(entries)-1].DateString(), len(entries))
	}
	return assemble(start, end, entries, coverage), nil
}

func assemble(start, end time.Time, entries []model.JournalEntry, coverage string) *model.ContextWindow {
	if entries == nil {
		entries = []model.JournalEntry{}
	}
	avg := Averages(entries)

	lines := make([]string, 0, len(entries)+2)
	lines = append(lines, coverage)
	lines = append(lines, "Averages → "+formatAverages(avg))
	for _, e := range entries {
		lines = append(lines, narrativeLine(e))
	}
	return &model.ContextWindow{
		Start:    start,
		End:      end,
		Entries:  entries,
		Averages: avg,
		Text:     strings.Join(lines, "\n"),
	}
}

// Averages computes per-metric means over entries that carry a metrics record
// and a value for the field, rounded to 2 decimals. Nil means unavailable.
func Averages(entries []model.JournalEntry) model.MetricAverages {
	var mood, energy, stress, sleep []float64
	for _, e := range entries {
		m := e.Metrics
		if m == nil {
			continue
		}
		if m.MoodScore != nil {
			mood = append(mood, float64(*m.MoodScore))
		}
		if m.EnergyScore != nil {
			energy = append(energy, float64(*m.EnergyScore))
		}
		if m.StressScore != nil {
			stress = append(stress, float64(*m.StressScore))
		}
		if m.SleepHours != nil {
			sleep = append(sleep, *m.SleepHours)
		}
	}
	return model.MetricAverages{
		MoodScore:   mean(mood),
		EnergyScore: mean(energy),
		StressScore: mean(stress),
		SleepHours:  mean(sleep),
	}
}

func mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	r := math.Round(sum/float64(len(vals))*100) / 100
	return &r
}

func formatAverages(a model.MetricAverages) string {
	fields := []struct {
		label string
		value *float64
	}{
		{"Mood Score", a.MoodScore},
		{"Energy Score", a.EnergyScore},
		{"Stress Score", a.StressScore},
		{"Sleep Hours", a.SleepHours},
	}
	var parts []string
	for _, f := range fields {
		if f.value != nil {
			parts = append(parts, f.label+": "+formatNumber(*f.value))
		}
	}
	if len(parts) == 0 {
		return "No metrics available."
	}
	return strings.Join(parts, " | ")
}

// formatNumber renders the shortest representation with at least one decimal (7 -> "7.0").
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func narrativeLine(e model.JournalEntry) string {
	summary := "(no summary)"
	if e.Summary != nil && *e.Summary != "" {
		summary = *e.Summary
	}
	event := "No events captured."
	if len(e.Events) > 0 {
		top := e.Events[0]
		event = "Key event: " + top.Description
		if len(top.People) > 0 {
			event += " (people: " + strings.Join(top.People, ", ") + ")"
		}
	}
	return fmt.Sprintf("- %s: %s | %s", e.DateString(), summary, event)
}
