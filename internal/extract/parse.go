package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/journallm/journallm/internal/model"
)

const previewLimit = 500

var (
	openingFence = regexp.MustCompile("^```(?:json)?\\s*\\n?")
	closingFence = regexp.MustCompile("\\n?```\\s*$")
)

// CleanJSON strips code fences (with an optional json tag) and clamps the
// text to the outermost braces. Clean JSON passes through unchanged.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = openingFence.ReplaceAllString(s, "")
		s = closingFence.ReplaceAllString(s, "")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}") + 1
	if start != -1 && end > start {
		s = s[start:end]
	}
	return strings.TrimSpace(s)
}

// ParseError reports extraction output that is not valid JSON after cleanup.
type ParseError struct {
	Cause   error
	Preview string // first 500 characters of the raw model output
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse extraction JSON: %v\nRaw: %s", e.Cause, e.Preview)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// Metadata is the decoded model output before defaults are applied.
type Metadata map[string]any

// Parse cleans raw and decodes it as a JSON object.
func Parse(raw string) (Metadata, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(CleanJSON(raw))))
	dec.UseNumber()
	var out Metadata
	if err := dec.Decode(&out); err != nil {
		return nil, &ParseError{Cause: err, Preview: preview(raw)}
	}
	// a second value after the object is invalid, not ignorable
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("extra data after JSON object at offset %d", dec.InputOffset())
		}
		return nil, &ParseError{Cause: err, Preview: preview(raw)}
	}
	if out == nil {
		return nil, &ParseError{Cause: fmt.Errorf("expected a JSON object"), Preview: preview(raw)}
	}
	return out, nil
}

func preview(raw string) string {
	r := []rune(raw)
	if len(r) > previewLimit {
		r = r[:previewLimit]
	}
	return string(r)
}

// Normalize applies defaults: scores 5, sleep 7.0, effect 0, category other.
// Descriptions and names are trimmed; blank names are dropped.
func Normalize(m Metadata) model.Extraction {
	out := model.Extraction{
		MoodScore:   model.DefaultScore,
		EnergyScore: model.DefaultScore,
		StressScore: model.DefaultScore,
		SleepHours:  model.DefaultSleepHours,
		Events:      []model.Event{},
	}
	if s, ok := m["summary"].(string); ok {
		out.Summary = s
	}
	if metrics, ok := m["metrics"].(map[string]any); ok {
		out.MoodScore = safeInt(metrics["mood_score"], model.DefaultScore)
		out.EnergyScore = safeInt(metrics["energy_score"], model.DefaultScore)
		out.StressScore = safeInt(metrics["stress_score"], model.DefaultScore)
		out.SleepHours = safeFloat(metrics["sleep_hours"], model.DefaultSleepHours)
	}
	events, _ := m["events"].([]any)
	for _, raw := range events {
		payload, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		desc, _ := payload["description"].(string)
		category, _ := payload["category"].(string)
		ev := model.Event{
			Description:  strings.TrimSpace(desc),
			Category:     model.ParseCategory(category),
			EffectOnMood: safeInt(payload[EffectOnMoodKey], model.DefaultEffectOnMood),
			People:       []string{},
		}
		people, _ := payload["people"].([]any)
		for _, p := range people {
			name, ok := p.(string)
			if !ok {
				continue
			}
			if name = strings.TrimSpace(name); name != "" {
				ev.People = append(ev.People, name)
			}
		}
		out.Events = append(out.Events, ev)
	}
	return out
}

// safeInt accepts integers, floats (truncated), numeric strings and bools.
func safeInt(v any, def int) int {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return int(f)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	case bool:
		if n {
			return 1
		}
		return 0
	}
	return def
}

// safeFloat accepts numbers, numeric strings and bools.
func safeFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	case bool:
		if n {
			return 1
		}
		return 0
	}
	return def
}
