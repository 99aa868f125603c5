package model

import "errors"

// Sentinel errors. Callers wrap them with %w and test with errors.Is.
var (
	// ErrNotFound is returned by lookups that match no stored entry.
	ErrNotFound = errors.New("journal entry not found")
	// ErrValidation marks input rejected before any store or model call.
	ErrValidation = errors.New("invalid input")
)
