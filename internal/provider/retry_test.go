package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/cocode/internal/status"
)

type recordingTelemetry struct {
	requests  int
	retries   int
	exhausted int
}

func (t *recordingTelemetry) OnRequest(int, error, time.Duration) { t.requests++ }
func (t *recordingTelemetry) OnRetry(int, time.Duration)          { t.retries++ }
func (t *recordingTelemetry) OnExhausted(int, error)              { t.exhausted++ }

func fastConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func TestExecute_SucceedsFirstAttempt(t *testing.T) {
	e := NewRetryExecutor(fastConfig())
	calls := 0
	result, err := Execute(context.Background(), e, func(ctx context.Context, attempt int) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestExecute_SucceedsAfterRetryableFailures(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 4
	e := NewRetryExecutor(cfg)
	calls := 0
	result, err := Execute(context.Background(), e, func(ctx context.Context, attempt int) (string, error) {
		calls++
		if calls < 3 {
			return "", status.New(status.ServiceUnavailable, "transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecute_ExhaustedAfterMaxAttempts(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 3
	telemetry := &recordingTelemetry{}
	e := NewRetryExecutor(cfg).WithTelemetry(telemetry)
	calls := 0
	_, err := Execute(context.Background(), e, func(ctx context.Context, attempt int) (string, error) {
		calls++
		return "", status.New(status.ServiceUnavailable, "down")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, telemetry.requests)
	assert.Equal(t, 2, telemetry.retries)
	assert.Equal(t, 1, telemetry.exhausted)
}

func TestExecute_NonRetryableErrorStopsImmediately(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 5
	e := NewRetryExecutor(cfg)
	calls := 0
	_, err := Execute(context.Background(), e, func(ctx context.Context, attempt int) (string, error) {
		calls++
		return "", status.New(status.InvalidArguments, "bad request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecute_NoRetryConfigMakesExactlyOneCall(t *testing.T) {
	e := NewRetryExecutor(NoRetryConfig())
	calls := 0
	_, err := Execute(context.Background(), e, func(ctx context.Context, attempt int) (string, error) {
		calls++
		return "", status.New(status.ServiceUnavailable, "down")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecute_RespectsRetryAfterOverComputedBackoff(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.InitialBackoff = time.Hour
	cfg.MaxAttempts = 2
	e := NewRetryExecutor(cfg)

	calls := 0
	start := time.Now()
	_, err := Execute(context.Background(), e, func(ctx context.Context, attempt int) (string, error) {
		calls++
		if calls == 1 {
			return "", &RetryAfterError{Cause: errors.New("slow down"), Delay: 5 * time.Millisecond}
		}
		return "ok", nil
	})
	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Less(t, elapsed, time.Second, "retry-after hint should supersede the hour-long computed backoff")
}

func TestExecute_ContextCancelledDuringBackoffAborts(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.InitialBackoff = time.Second
	cfg.MaxAttempts = 3
	e := NewRetryExecutor(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	_, err := Execute(ctx, e, func(ctx context.Context, attempt int) (string, error) {
		calls++
		return "", status.New(status.ServiceUnavailable, "down")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithJitterRatio_ClampsToUnitInterval(t *testing.T) {
	cfg := RetryConfig{}.WithJitterRatio(5)
	assert.Equal(t, 1.0, cfg.JitterRatio)
	cfg = RetryConfig{}.WithJitterRatio(-1)
	assert.Equal(t, 0.0, cfg.JitterRatio)
}

func TestComputeDelay_NeverExceedsMaxBackoff(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff:    time.Second,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 10,
		JitterRatio:       1,
	}
	for attempt := 1; attempt <= 5; attempt++ {
		delay := computeDelay(cfg, attempt, errors.New("x"))
		assert.LessOrEqual(t, delay, cfg.MaxBackoff)
	}
}
