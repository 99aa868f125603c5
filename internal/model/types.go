package model

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the ISO 8601 calendar date format used on the wire and in context text.
const DateLayout = "2006-01-02"

// EventCategory classifies a journal event.
type EventCategory string

const (
	CategoryWork     EventCategory = "work"
	CategoryStudy    EventCategory = "study"
	CategorySocial   EventCategory = "social"
	CategoryHealth   EventCategory = "health"
	CategoryPersonal EventCategory = "personal"
	CategoryOther    EventCategory = "other"
)

// ParseCategory maps free text to a known category; anything unknown or blank is "other".
func ParseCategory(s string) EventCategory {
	switch c := EventCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryWork, CategoryStudy, CategorySocial, CategoryHealth, CategoryPersonal:
		return c
	default:
		return CategoryOther
	}
}

// Metric defaults applied when the extractor cannot determine a value.
const (
	DefaultScore        = 5
	DefaultSleepHours   = 7.0
	DefaultEffectOnMood = 0
)

// JournalEntry is one persisted journal record for a calendar date.
// Metrics and Events are owned by the entry and deleted with it.
type JournalEntry struct {
	ID         int64         `json:"id"`
	Date       time.Time     `json:"-"`
	RawText    string        `json:"-"`
	FileHash   *string       `json:"file_hash,omitempty"`
	SourcePath *string       `json:"source_path"`
	CreatedAt  time.Time     `json:"created_at"`
	Summary    *string       `json:"summary"`
	Metrics    *EntryMetrics `json:"metrics"`
	Events     []Event       `json:"events"`
}

// DateString renders the entry date as YYYY-MM-DD.
func (e JournalEntry) DateString() string { return e.Date.Format(DateLayout) }

// MarshalJSON emits the date as YYYY-MM-DD alongside the other fields.
func (e JournalEntry) MarshalJSON() ([]byte, error) {
	type plain JournalEntry
	return json.Marshal(struct {
		Date string `json:"date"`
		plain
	}{Date: e.DateString(), plain: plain(e)})
}

// EntryMetrics are the per-entry scores. Fields are nullable on read.
type EntryMetrics struct {
	MoodScore   *int     `json:"mood_score"`
	EnergyScore *int     `json:"energy_score"`
	StressScore *int     `json:"stress_score"`
	SleepHours  *float64 `json:"sleep_hours"`
}

// Event is something notable that happened on the entry's day.
type Event struct {
	ID           int64         `json:"id"`
	Description  string        `json:"description"`
	Category     EventCategory `json:"category"`
	EffectOnMood int           `json:"effect_on_mood"`
	People       []string      `json:"people"`
}

// Extraction is the normalized output of the metadata extractor for one entry.
type Extraction struct {
	Summary     string  `json:"summary"`
	MoodScore   int     `json:"mood_score"`
	EnergyScore int     `json:"energy_score"`
	StressScore int     `json:"stress_score"`
	SleepHours  float64 `json:"sleep_hours"`
	Events      []Event `json:"events"`
}

// ConversationTurn is one prior (user, assistant) exchange, oldest first.
type ConversationTurn struct {
	User      string
	Assistant string
}

// MetricAverages holds per-metric means; nil means no entry carried the metric.
type MetricAverages struct {
	MoodScore   *float64 `json:"mood_score"`
	EnergyScore *float64 `json:"energy_score"`
	StressScore *float64 `json:"stress_score"`
	SleepHours  *float64 `json:"sleep_hours"`
}

// ContextWindow is the aggregated view of entries in an inclusive date range.
// It is built per request and never cached.
type ContextWindow struct {
	Start    time.Time      `json:"-"`
	End      time.Time      `json:"-"`
	Entries  []JournalEntry `json:"entries"`
	Averages MetricAverages `json:"metrics"`
	Text     string         `json:"text"`
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// Day truncates t to its calendar date in t's location, returned as UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
