package insights

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when the minimum interval between
// generation calls has not elapsed yet.
var ErrRateLimited = errors.New("insight generation rate limited")

// Clock abstracts time for the limiter so tests can drive it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Limiter enforces a minimum interval between calls to the hosted
// language model. State is explicit (last-call timestamp) and the
// clock is injected; there is no ambient package state.
type Limiter struct {
	mu          sync.Mutex
	clock       Clock
	minInterval time.Duration
	last        time.Time
}

// NewLimiter creates a limiter with the given minimum interval.
func NewLimiter(minInterval time.Duration, clock Clock) *Limiter {
	if clock == nil {
		clock = SystemClock()
	}
	return &Limiter{clock: clock, minInterval: minInterval}
}

// Allow reports whether a call may proceed now, and records the call
// time when it may.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if !l.last.IsZero() && now.Sub(l.last) < l.minInterval {
		return false
	}
	l.last = now
	return true
}
