// Package llm defines the language-model capability shared by chat and extraction.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Backend generates a reply from a system instruction and user-facing content.
// Implementations return the model text untouched; callers trim.
type Backend interface {
	Name() string
	Generate(ctx context.Context, system, user string) (string, error)
}

// ErrBackendUnavailable signals that the model backend could not produce a reply.
var ErrBackendUnavailable = errors.New("assistant backend unavailable")

// Unavailable wraps cause so errors.Is(err, ErrBackendUnavailable) holds.
// Errors already carrying ErrBackendUnavailable are returned as-is.
func Unavailable(cause error) error {
	if cause == nil || errors.Is(cause, ErrBackendUnavailable) {
		return cause
	}
	return fmt.Errorf("%w: %w", ErrBackendUnavailable, cause)
}
