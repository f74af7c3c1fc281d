package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is implemented by component-level checkers (store, and any
// future dependency the service gates startup on).
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker folds component checkers into one service-level
// health flag.
type ServiceHealthChecker struct {
	healthy  atomic.Int32
	checkers []HealthChecker
	log      zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, checkers ...HealthChecker) *ServiceHealthChecker {
	h := &ServiceHealthChecker{checkers: checkers, log: log}
	h.healthy.Store(0)
	return h
}

// IsHealthy returns cached service health.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.healthy.Load() == 1 }

// Start periodically re-evaluates component health and logs transitions.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := int32(0)
	eval := func() {
		up := int32(1)
		for _, c := range h.checkers {
			if !c.IsHealthy() {
				up = 0
				break
			}
		}
		h.healthy.Store(up)
		if up != prev {
			if up == 1 {
				h.log.Info().Msg("service health: UP")
			} else {
				h.log.Error().Msg("service health: DOWN")
			}
			prev = up
		}
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}
