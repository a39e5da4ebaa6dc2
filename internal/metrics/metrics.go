// Package metrics tracks process-wide counters sampled by the
// monitoring endpoints.
package metrics

import (
	"context"
	"sync/atomic"
	"time"
)

// Metrics holds live connection and message counters. All methods are
// safe for concurrent use.
type Metrics struct {
	start        time.Time
	connections  atomic.Int64
	peak         atomic.Int64
	windowCount  atomic.Int64 // messages in the current one-second window
	perSecond    atomic.Int64
	roomsCreated atomic.Int64
}

func New() *Metrics {
	return &Metrics{start: time.Now()}
}

// Run rotates the messages-per-second window every second until ctx
// is canceled.
func (m *Metrics) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.rotate()
		case <-ctx.Done():
			return
		}
	}
}

func (m *Metrics) rotate() {
	m.perSecond.Store(m.windowCount.Swap(0))
}

// ConnOpened records a new websocket connection and tracks the peak.
func (m *Metrics) ConnOpened() {
	n := m.connections.Add(1)
	for {
		peak := m.peak.Load()
		if n <= peak || m.peak.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (m *Metrics) ConnClosed() {
	m.connections.Add(-1)
}

// Message records one processed inbound event.
func (m *Metrics) Message() {
	m.windowCount.Add(1)
}

func (m *Metrics) RoomCreated() {
	m.roomsCreated.Add(1)
}

func (m *Metrics) Connections() int64 {
	return m.connections.Load()
}

func (m *Metrics) PeakConnections() int64 {
	return m.peak.Load()
}

func (m *Metrics) MessagesPerSecond() int64 {
	return m.perSecond.Load()
}

func (m *Metrics) RoomsCreated() int64 {
	return m.roomsCreated.Load()
}

// Uptime returns whole seconds since the process started counting.
func (m *Metrics) Uptime(now time.Time) int64 {
	return int64(now.Sub(m.start).Seconds())
}
