package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/journallm/journallm/internal/health"
)

// NewStoreHealthChecker monitors store health. Stores implementing
// health.HealthPinger are pinged directly; others are probed with an empty
// date-range read.
func NewStoreHealthChecker(s Store, log zerolog.Logger, probeTimeout time.Duration) *health.PingChecker {
	var p health.HealthPinger
	if hp, ok := s.(health.HealthPinger); ok {
		p = hp
	} else {
		p = health.PingFunc(func(ctx context.Context) error {
			epoch := time.Unix(0, 0).UTC()
			_, err := s.Entries().ListBetween(ctx, epoch, epoch)
			return err
		})
	}
	return health.NewPingChecker("store", p, log, probeTimeout)
}
