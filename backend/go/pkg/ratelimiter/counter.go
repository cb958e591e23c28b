package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowCounter implements RateLimiter with a fixed window counter.
// At most limit requests are allowed per window.
type FixedWindowCounter struct {
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
	now         Clock
	mutex       sync.Mutex
}

// NewFixedWindowCounter creates a new FixedWindowCounter.
func NewFixedWindowCounter(limit int, window time.Duration) *FixedWindowCounter {
	return NewFixedWindowCounterWithClock(limit, window, time.Now)
}

// NewFixedWindowCounterWithClock is NewFixedWindowCounter with an explicit time source.
func NewFixedWindowCounterWithClock(limit int, window time.Duration, now Clock) *FixedWindowCounter {
	return &FixedWindowCounter{
		limit:       limit,
		window:      window,
		windowStart: now(),
		now:         now,
	}
}

// Allow resets the counter once the window has passed, then counts the request if under the limit.
func (fwc *FixedWindowCounter) Allow() bool {
	fwc.mutex.Lock()
	defer fwc.mutex.Unlock()

	now := fwc.now()
	if !now.Before(fwc.windowStart.Add(fwc.window)) {
		fwc.windowStart = now
		fwc.count = 0
	}

	if fwc.count < fwc.limit {
		fwc.count++
		return true
	}
	return false
}
