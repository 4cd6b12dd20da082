package shutdown_test

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admindash/pkg/shutdown"
)

func TestWaitExecutesHooksOnContextCancel(t *testing.T) {
	var calls atomic.Int32
	hook := func(context.Context) error {
		calls.Add(1)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := shutdown.Wait(ctx, time.Second, hook, hook)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWaitExecutesHooksOnSignal(t *testing.T) {
	hookCalled := make(chan struct{})
	waitDone := make(chan error, 1)

	go func() {
		waitDone <- shutdown.Wait(context.Background(), time.Second, func(context.Context) error {
			close(hookCalled)
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)

	process, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, process.Signal(syscall.SIGTERM))

	select {
	case <-hookCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("hook was not called")
	}
	require.NoError(t, <-waitDone)
}

func TestRunJoinsHookErrors(t *testing.T) {
	errFirst := errors.New("first")
	errSecond := errors.New("second")

	err := shutdown.Run(context.Background(), time.Second,
		func(context.Context) error { return errFirst },
		func(context.Context) error { return nil },
		func(context.Context) error { return errSecond },
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errSecond)
}

func TestRunRespectsTimeout(t *testing.T) {
	slowHook := func(ctx context.Context) error {
		select {
		case <-time.After(2 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	start := time.Now()
	err := shutdown.Run(context.Background(), 100*time.Millisecond, slowHook)

	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
