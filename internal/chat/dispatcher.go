// Package chat turns a context window, a question and prior turns into one
// backend request.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/journallm/journallm/internal/llm"
	"github.com/journallm/journallm/internal/model"
)

// WindowBuilder builds the context window for an explicit date range.
type WindowBuilder interface {
	Window(ctx context.Context, start, end time.Time) (*model.ContextWindow, error)
}

// Request is one chat call. History is oldest first and is never reordered.
type Request struct {
	Message string
	Start   time.Time
	End     time.Time
	History []model.ConversationTurn
}

// Dispatcher is stateless across requests.
type Dispatcher struct {
	windows WindowBuilder
	backend llm.Backend
	log     zerolog.Logger
}

func NewDispatcher(windows WindowBuilder, backend llm.Backend, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{windows: windows, backend: backend, log: log}
}

// Backend returns the configured backend name.
func (d *Dispatcher) Backend() string { return d.backend.Name() }

// Reply builds a fresh context window and returns the backend reply with
// surrounding whitespace trimmed. An empty reply is returned as-is.
// Backend failures are wrapped with llm.ErrBackendUnavailable.
func (d *Dispatcher) Reply(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", fmt.Errorf("message is required: %w", model.ErrValidation)
	}
	start, end := model.Day(req.Start), model.Day(req.End)
	if start.After(end) {
		return "", fmt.Errorf("start date must be on or before end date: %w", model.ErrValidation)
	}

	window, err := d.windows.Window(ctx, start, end)
	if err != nil {
		return "", err
	}

	began := time.Now()
	out, err := d.backend.Generate(ctx, SystemPrompt(start, end), Body(window.Text, req.History, req.Message))
	if err != nil {
		d.log.Error().Err(err).Str("backend", d.backend.Name()).Msg("chat backend call failed")
		return "", llm.Unavailable(err)
	}
	d.log.Debug().
		Str("backend", d.backend.Name()).
		Int("entries", len(window.Entries)).
		Int("history", len(req.History)).
		Dur("elapsed", time.Since(began)).
		Msg("chat reply")
	return strings.TrimSpace(out), nil
}
