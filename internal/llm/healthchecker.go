package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/journallm/journallm/internal/health"
)

// NewBackendHealthChecker monitors a backend. Backends implementing
// health.HealthPinger are pinged; others are asked for a one-word reply.
func NewBackendHealthChecker(b Backend, log zerolog.Logger, probeTimeout time.Duration) *health.PingChecker {
	var p health.HealthPinger
	if hp, ok := b.(health.HealthPinger); ok {
		p = hp
	} else {
		p = health.PingFunc(func(ctx context.Context) error {
			_, err := b.Generate(ctx, "Reply with the single word: ok", "ping")
			return err
		})
	}
	return health.NewPingChecker("llm:"+b.Name(), p, log, probeTimeout)
}
