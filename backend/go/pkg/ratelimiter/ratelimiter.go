package ratelimiter

import (
	"fmt"
	"time"

	"Profile_1.0/backend/go/internal/config"
)

// RateLimiter is the interface for rate limiting.
// Allow returns true if a request may proceed.
type RateLimiter interface {
	Allow() bool
}

// Clock returns the current time. Limiters take one so tests can drive time.
type Clock func() time.Time

// FromConfig initializes a rate limiter based on the configuration.
// It returns a nil limiter when rate limiting is disabled.
func FromConfig(cfg config.RateLimiterConfig) (RateLimiter, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = "tokenBucket"
	}

	switch algorithm {
	case "tokenBucket":
		conf := cfg.TokenBucket
		return NewTokenBucket(conf.Rate, conf.Capacity), nil
	case "fixedWindow":
		conf := cfg.FixedWindow
		window, err := time.ParseDuration(conf.Window)
		if err != nil {
			return nil, fmt.Errorf("invalid fixedWindow duration: %w", err)
		}
		return NewFixedWindowCounter(conf.Limit, window), nil
	default:
		return nil, fmt.Errorf("unknown rate limiter algorithm: %s", cfg.Algorithm)
	}
}
