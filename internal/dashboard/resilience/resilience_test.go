package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admindash/internal/dashboard/resilience"
)

var errBackend = errors.New("backend down")

func TestCircuitBreaker_Lifecycle(t *testing.T) {
	ctx := context.Background()
	cb := resilience.NewCircuitBreaker("test", resilience.CircuitBreakerConfig{
		ErrorThreshold:   2,
		Timeout:          30 * time.Millisecond,
		SuccessThreshold: 1,
	})

	fail := func() error { return errBackend }
	ok := func() error { return nil }

	require.ErrorIs(t, cb.Execute(ctx, fail), errBackend)
	assert.Equal(t, resilience.StateClosed, cb.GetState())
	require.ErrorIs(t, cb.Execute(ctx, fail), errBackend)
	assert.Equal(t, resilience.StateOpen, cb.GetState())

	called := false
	err := cb.Execute(ctx, func() error { called = true; return nil })
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.False(t, called)

	time.Sleep(40 * time.Millisecond)
	require.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, resilience.StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	ctx := context.Background()
	cb := resilience.NewCircuitBreaker("test", resilience.CircuitBreakerConfig{
		ErrorThreshold:   1,
		Timeout:          20 * time.Millisecond,
		SuccessThreshold: 2,
	})

	require.Error(t, cb.Execute(ctx, func() error { return errBackend }))
	time.Sleep(30 * time.Millisecond)

	require.True(t, cb.AllowRequest(ctx))
	assert.Equal(t, resilience.StateHalfOpen, cb.GetState())
	cb.RecordResult(ctx, errBackend)
	assert.Equal(t, resilience.StateOpen, cb.GetState())
}

func TestCircuitBreaker_IgnoresNonFailures(t *testing.T) {
	ctx := context.Background()
	clientErr := errors.New("400 bad request")
	cb := resilience.NewCircuitBreaker("test", resilience.CircuitBreakerConfig{
		ErrorThreshold: 1,
		Timeout:        time.Minute,
		IsFailure:      func(err error) bool { return !errors.Is(err, clientErr) },
	})

	for i := 0; i < 5; i++ {
		require.ErrorIs(t, cb.Execute(ctx, func() error { return clientErr }), clientErr)
	}
	assert.Equal(t, resilience.StateClosed, cb.GetState())
}

func TestRetry_Execute(t *testing.T) {
	ctx := context.Background()
	cfg := resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		BackoffFactor:  2,
	}

	t.Run("succeeds after failures", func(t *testing.T) {
		attempts := 0
		err := resilience.NewRetry("test", cfg).Execute(ctx, func() error {
			attempts++
			if attempts < 3 {
				return errBackend
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		attempts := 0
		err := resilience.NewRetry("test", cfg).Execute(ctx, func() error {
			attempts++
			return errBackend
		})
		require.ErrorIs(t, err, errBackend)
		assert.Equal(t, 3, attempts)
	})

	t.Run("non retryable error", func(t *testing.T) {
		noRetry := cfg
		noRetry.ShouldRetry = func(error) bool { return false }
		attempts := 0
		err := resilience.NewRetry("test", noRetry).Execute(ctx, func() error {
			attempts++
			return errBackend
		})
		require.ErrorIs(t, err, errBackend)
		assert.Equal(t, 1, attempts)
	})

	t.Run("context canceled while waiting", func(t *testing.T) {
		slow := cfg
		slow.InitialBackoff = time.Hour
		slow.MaxBackoff = 0
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := resilience.NewRetry("test", slow).Execute(cctx, func() error { return errBackend })
		require.ErrorIs(t, err, resilience.ErrContextCanceled)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestServiceResilience(t *testing.T) {
	ctx := context.Background()
	r := resilience.NewServiceResilience("backend",
		resilience.CircuitBreakerConfig{ErrorThreshold: 2, Timeout: time.Minute, SuccessThreshold: 1},
		resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			BackoffFactor:  1,
			ShouldRetry:    func(err error) bool { return !errors.Is(err, resilience.ErrCircuitOpen) },
		})

	attempts := 0
	err := r.ExecuteWithRetry(ctx, "login", func() error {
		attempts++
		return errBackend
	})

	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, resilience.StateOpen, r.State())

	err = r.Execute(ctx, "list", func() error { return nil })
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
}
