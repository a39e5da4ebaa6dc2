package quiz

import (
	"context"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
)

// Sweeper periodically evicts stale rooms from a registry. The time
// source is injectable so tests can drive ticks with a mock clock.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	clock    clock.Clock
}

func NewSweeper(registry *Registry, interval time.Duration) *Sweeper {
	return NewSweeperWithClock(registry, interval, clock.New())
}

func NewSweeperWithClock(registry *Registry, interval time.Duration, clk clock.Clock) *Sweeper {
	return &Sweeper{
		registry: registry,
		interval: interval,
		clock:    clk,
	}
}

// Run sweeps on every interval tick until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			evicted := s.registry.Sweep(s.clock.Now())
			for _, code := range evicted {
				slog.Info("evicted stale room", slog.String("code", code))
			}
		case <-ctx.Done():
			return
		}
	}
}
