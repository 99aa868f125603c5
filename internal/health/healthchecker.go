// Package health tracks dependency health for the journal service.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is implemented by component-level checkers (store, llm backend).
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker folds component checkers into one cached flag.
// It never probes on its own; it only reads the components' cached state.
type ServiceHealthChecker struct {
	up   atomic.Bool
	deps []HealthChecker
	log  zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, deps ...HealthChecker) *ServiceHealthChecker {
	return &ServiceHealthChecker{deps: deps, log: log}
}

func (h *ServiceHealthChecker) IsHealthy() bool { return h.up.Load() }

// Components reports the cached health of each dependency by name.
func (h *ServiceHealthChecker) Components() map[string]bool {
	out := make(map[string]bool, len(h.deps))
	for _, c := range h.deps {
		out[c.Name()] = c.IsHealthy()
	}
	return out
}

// down lists the names of unhealthy dependencies.
func (h *ServiceHealthChecker) down() []string {
	var names []string
	for _, c := range h.deps {
		if !c.IsHealthy() {
			names = append(names, c.Name())
		}
	}
	return names
}

// refresh recomputes the flag and logs only on transitions.
func (h *ServiceHealthChecker) refresh() {
	down := h.down()
	now := len(down) == 0
	if h.up.Swap(now) == now {
		return
	}
	if now {
		h.log.Info().Int("components", len(h.deps)).Msg("service health: UP")
		return
	}
	h.log.Warn().Strs("down", down).Msg("service health: DOWN")
}

// Start re-evaluates every interval until ctx is done.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.refresh()
		}
	}
}
