// Package resilience provides bounded retry with linear backoff for remote calls.
package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts is the attempt budget when none is configured.
	DefaultMaxAttempts = 3
	// DefaultBackoffBase is the unit of the linear backoff schedule.
	DefaultBackoffBase = 2 * time.Second
)

// RetryConfig controls a bounded series of attempts.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	// A value of 1 means no retries.
	MaxAttempts int

	// BackoffBase is the delay unit: attempt n failing waits n×BackoffBase
	// before attempt n+1. Zero retries immediately.
	BackoffBase time.Duration

	// ShouldRetry optionally overrides the default transient-error check.
	// If nil, IsTransient is used.
	ShouldRetry func(err error) bool

	// OnRetry is called before each retry sleep with the failed attempt
	// number (1-based) and its error.
	OnRetry func(attempt int, err error)
}

// NewRetryConfig returns a config with maxAttempts attempts spaced base,
// 2×base, 3×base… apart. A non-positive maxAttempts uses DefaultMaxAttempts
// and a negative base uses DefaultBackoffBase.
func NewRetryConfig(maxAttempts int, base time.Duration) RetryConfig {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if base < 0 {
		base = DefaultBackoffBase
	}
	return RetryConfig{MaxAttempts: maxAttempts, BackoffBase: base}
}

// Backoff returns the sleep after the given failed attempt (1-based).
func (c RetryConfig) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return c.BackoffBase * time.Duration(attempt)
}

// DoVal runs fn until it succeeds, returns an error ShouldRetry rejects, the
// attempt budget runs out, or ctx is done. It never sleeps after the last
// attempt and returns the last error seen.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !shouldRetry(err) || attempt == cfg.MaxAttempts {
			return zero, lastErr
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		delay := cfg.Backoff(attempt)
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// RetryLogger returns an OnRetry callback that logs each retry at warn.
func RetryLogger(logger *zap.Logger, service, operation string) func(int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(attempt int, err error) {
		logger.Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
