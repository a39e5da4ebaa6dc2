package rate

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Limiter is a sliding-window rate limiter. The dispatcher keeps one
// per connection to bound how fast a single client can fire events.
type Limiter struct {
	window  time.Duration
	limit   int
	history []time.Time // timestamps of allowed requests, oldest first
	mu      sync.Mutex
	clock   Clock
}

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

func NewLimiter(window time.Duration, limit int) *Limiter {
	return NewLimiterWithClock(window, limit, clock.New())
}

func NewLimiterWithClock(window time.Duration, limit int, clock Clock) *Limiter {
	return &Limiter{
		window: window,
		limit:  limit,
		clock:  clock,
	}
}

// Allow reports whether one more request fits in the current window
// and records it if so.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.history = l.slide(now)

	if len(l.history) >= l.limit {
		return false
	}

	l.history = append(l.history, now)

	return true
}

// slide drops history entries that fell out of the window.
func (l *Limiter) slide(now time.Time) []time.Time {
	window := now.Add(-l.window)
	i := 0
	for i < len(l.history) && l.history[i].Before(window) {
		i++
	}
	return append(l.history[:0:0], l.history[i:]...)
}

// Remaining returns how many requests are still allowed in the
// current window.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	return l.limit - len(l.slide(now))
}
