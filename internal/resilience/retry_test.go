package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errUnavailable = NewTransientError(errors.New("sirene: status 503"), 503)

func TestNewRetryConfig(t *testing.T) {
	cfg := NewRetryConfig(0, -1)
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, DefaultBackoffBase, cfg.BackoffBase)

	cfg = NewRetryConfig(5, 0)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Zero(t, cfg.BackoffBase)
}

func TestBackoff_Linear(t *testing.T) {
	cfg := NewRetryConfig(3, 2*time.Second)

	assert.Equal(t, 2*time.Second, cfg.Backoff(1))
	assert.Equal(t, 4*time.Second, cfg.Backoff(2))
	assert.Equal(t, 6*time.Second, cfg.Backoff(3))
	assert.Zero(t, cfg.Backoff(0))
}

func TestDoVal_ReturnsValueOnFirstSuccess(t *testing.T) {
	var calls int
	val, err := DoVal(context.Background(), NewRetryConfig(3, time.Millisecond), func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 1, calls)
}

func TestDoVal_SucceedsAfterTransientFailures(t *testing.T) {
	var calls int
	val, err := DoVal(context.Background(), NewRetryConfig(3, time.Millisecond), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errUnavailable
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 3, calls)
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	var calls int
	var retried []int
	cfg := NewRetryConfig(3, time.Millisecond)
	cfg.OnRetry = func(attempt int, _ error) { retried = append(retried, attempt) }

	val, err := DoVal(context.Background(), cfg, func(context.Context) (string, error) {
		calls++
		return "partial", errUnavailable
	})
	assert.Same(t, errUnavailable, err)
	assert.Empty(t, val)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried, "no retry callback after the last attempt")
}

func TestDoVal_NonTransientStopsImmediately(t *testing.T) {
	var calls int
	_, err := DoVal(context.Background(), NewRetryConfig(3, time.Millisecond), func(context.Context) (string, error) {
		calls++
		return "", errors.New("sirene: not found")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_CustomShouldRetry(t *testing.T) {
	var calls int
	cfg := NewRetryConfig(3, 0)
	cfg.ShouldRetry = func(error) bool { return true }

	_, err := DoVal(context.Background(), cfg, func(context.Context) (string, error) {
		calls++
		return "", errors.New("plain")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoVal_ZeroBaseDoesNotSleep(t *testing.T) {
	start := time.Now()
	var calls int
	_, err := DoVal(context.Background(), NewRetryConfig(3, 0), func(context.Context) (string, error) {
		calls++
		return "", errUnavailable
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDoVal_ContextCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	cfg := NewRetryConfig(3, time.Hour)
	cfg.OnRetry = func(int, error) { cancel() }

	start := time.Now()
	_, err := DoVal(ctx, cfg, func(context.Context) (string, error) {
		calls++
		return "", errUnavailable
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestRetryLogger(t *testing.T) {
	t.Parallel()
	RetryLogger(zap.NewNop(), "sirene", "fetch_establishment")(1, errors.New("test error"))
	RetryLogger(nil, "sirene", "fetch_legal_entity")(2, errors.New("test error"))
}
