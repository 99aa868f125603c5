package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/journallm/journallm/internal/model"
)

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// Date parses a required YYYY-MM-DD value.
func Date(field, v string) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date in YYYY-MM-DD format", field)
	}
	return d, nil
}

// OptionalDate parses a YYYY-MM-DD value; empty yields the zero time.
func OptionalDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return Date(field, v)
}

// DateRange parses both bounds and rejects start after end.
func DateRange(startField, start, endField, end string) (time.Time, time.Time, error) {
	s, err := Date(startField, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := Date(endField, end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if s.After(e) {
		return time.Time{}, time.Time{}, ErrRangeOrder
	}
	return s, e, nil
}

// ErrRangeOrder is returned when a start date is after its end date.
var ErrRangeOrder = errors.New("Start date must be on or before end date")

// IntInRange parses an optional integer query value bounded by [lo, hi].
func IntInRange(field, v string, def, lo, hi int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", field)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s must be between %d and %d", field, lo, hi)
	}
	return n, nil
}

// Role accepts the two chat history roles.
func Role(v string) error {
	if v != "user" && v != "assistant" {
		return fmt.Errorf("history role must be 'user' or 'assistant', got %q", v)
	}
	return nil
}
