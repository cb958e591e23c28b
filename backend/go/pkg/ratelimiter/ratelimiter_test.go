package ratelimiter

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"Profile_1.0/backend/go/internal/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestTokenBucket_BurstThenRefill(t *testing.T) {
	clock := newFakeClock()
	tb := NewTokenBucketWithClock(2, 3, clock.Now)

	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("request %d within capacity was rejected", i+1)
		}
	}
	if tb.Allow() {
		t.Fatal("request beyond capacity was allowed")
	}

	// 2 tokens/s: half a second yields one token
	clock.Advance(500 * time.Millisecond)
	if !tb.Allow() {
		t.Fatal("expected a refilled token after 500ms")
	}
	if tb.Allow() {
		t.Fatal("only one token should have been refilled")
	}

	// refill never exceeds capacity
	clock.Advance(time.Hour)
	allowed := 0
	for i := 0; i < 10; i++ {
		if tb.Allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Errorf("allowed %d after long idle, want capacity 3", allowed)
	}
}

func TestFixedWindowCounter(t *testing.T) {
	clock := newFakeClock()
	fw := NewFixedWindowCounterWithClock(2, time.Minute, clock.Now)

	if !fw.Allow() || !fw.Allow() {
		t.Fatal("first two requests should pass")
	}
	if fw.Allow() {
		t.Fatal("third request in the window should be rejected")
	}

	clock.Advance(time.Minute)
	if !fw.Allow() {
		t.Fatal("a new window should allow requests again")
	}
}

func TestLimiters_ConcurrentUse(t *testing.T) {
	limiters := map[string]RateLimiter{
		"tokenBucket": NewTokenBucketWithClock(0, 50, newFakeClock().Now),
		"fixedWindow": NewFixedWindowCounterWithClock(50, time.Hour, newFakeClock().Now),
	}

	for name, limiter := range limiters {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			var mu sync.Mutex
			allowed := 0
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if limiter.Allow() {
						mu.Lock()
						allowed++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			if allowed != 50 {
				t.Errorf("allowed = %d, want 50", allowed)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	base := config.Default().Middleware.RateLimiter

	disabled, err := FromConfig(base)
	if err != nil || disabled != nil {
		t.Fatalf("disabled config: got (%v, %v), want (nil, nil)", disabled, err)
	}

	enabled := base
	enabled.Enabled = true

	tests := []struct {
		name      string
		algorithm string
		window    string
		wantType  string
		wantErr   bool
	}{
		{name: "default algorithm", algorithm: "", window: "1m", wantType: "*ratelimiter.TokenBucket"},
		{name: "token bucket", algorithm: "tokenBucket", window: "1m", wantType: "*ratelimiter.TokenBucket"},
		{name: "fixed window", algorithm: "fixedWindow", window: "1m", wantType: "*ratelimiter.FixedWindowCounter"},
		{name: "fixed window bad window", algorithm: "fixedWindow", window: "soon", wantErr: true},
		{name: "unknown", algorithm: "leakyBucket", window: "1m", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := enabled
			cfg.Algorithm = tt.algorithm
			cfg.FixedWindow.Window = tt.window

			limiter, err := FromConfig(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("FromConfig() error = %v", err)
			}
			if got := fmt.Sprintf("%T", limiter); got != tt.wantType {
				t.Errorf("limiter type = %s, want %s", got, tt.wantType)
			}
		})
	}
}
