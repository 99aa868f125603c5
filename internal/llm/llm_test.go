package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable(cause)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "assistant backend unavailable: connection refused", err.Error())

	assert.Same(t, err, Unavailable(err), "no double wrapping")
	assert.NoError(t, Unavailable(nil))
}

type stubBackend struct{ err error }

func (s stubBackend) Name() string { return "stub" }
func (s stubBackend) Generate(context.Context, string, string) (string, error) {
	return "ok", s.err
}

type pingBackend struct {
	stubBackend
	pinged bool
}

func (p *pingBackend) HealthPing(context.Context) error { p.pinged = true; return nil }

func TestBackendHealthChecker(t *testing.T) {
	hc := NewBackendHealthChecker(stubBackend{}, zerolog.Nop(), time.Second)
	assert.Equal(t, "llm:stub", hc.Name())
	assert.True(t, hc.Check(context.Background()))

	down := NewBackendHealthChecker(stubBackend{err: errors.New("down")}, zerolog.Nop(), time.Second)
	assert.False(t, down.Check(context.Background()))

	pb := &pingBackend{}
	assert.True(t, NewBackendHealthChecker(pb, zerolog.Nop(), time.Second).Check(context.Background()))
	assert.True(t, pb.pinged)
}
