package retry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/adminboard/internal/engine/retry"
)

var errBoom = errors.New("boom")

func TestRun_FirstAttemptSucceeds(t *testing.T) {
	var calls atomic.Int32
	res := retry.Run(context.Background(), func(context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}, retry.Options{Timeout: time.Second, Retries: 3})

	assert.True(t, res.Success)
	assert.Equal(t, 42, res.Value)
	assert.NoError(t, res.Err)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRun_SucceedsOnThirdAttempt(t *testing.T) {
	var calls atomic.Int32
	res := retry.Run(context.Background(), func(context.Context) (string, error) {
		if calls.Add(1) < 3 {
			return "", errBoom
		}
		return "ok", nil
	}, retry.Options{Timeout: time.Second, Retries: 2, OperationName: "refresh"})

	require.True(t, res.Success)
	assert.Equal(t, "ok", res.Value)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRun_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	res := retry.Run(context.Background(), func(context.Context) (int, error) {
		calls.Add(1)
		return 0, errBoom
	}, retry.Options{Timeout: time.Second, Retries: 2, OperationName: "refresh"})

	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, int32(3), calls.Load())
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, retry.ErrExhausted)
	assert.ErrorIs(t, res.Err, errBoom)

	var exhausted *retry.ExhaustedError
	require.ErrorAs(t, res.Err, &exhausted)
	assert.Equal(t, "refresh", exhausted.Operation)
	assert.Equal(t, 3, exhausted.Attempts)
}

func TestRun_NeverResolvingOperationTimesOut(t *testing.T) {
	var calls atomic.Int32
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	start := time.Now()
	res := retry.Run(context.Background(), func(context.Context) (int, error) {
		calls.Add(1)
		<-block
		return 0, nil
	}, retry.Options{Timeout: 100 * time.Millisecond, Retries: 1, OperationName: "dashboard refresh"})
	elapsed := time.Since(start)

	assert.False(t, res.Success)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, int32(2), calls.Load())
	assert.ErrorIs(t, res.Err, retry.ErrTimeout)
	assert.ErrorIs(t, res.Err, retry.ErrExhausted)
	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)

	var timeout *retry.TimeoutError
	require.ErrorAs(t, res.Err, &timeout)
	assert.Equal(t, "dashboard refresh", timeout.Operation)
	assert.Contains(t, res.Err.Error(), "dashboard refresh")
}

func TestRun_RecoversPanics(t *testing.T) {
	var calls atomic.Int32
	res := retry.Run(context.Background(), func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			panic("kaboom")
		}
		return 7, nil
	}, retry.Options{Timeout: time.Second, Retries: 1})

	assert.True(t, res.Success)
	assert.Equal(t, 7, res.Value)
	assert.Equal(t, 2, res.Attempts)
}

func TestRun_PanicOnEveryAttempt(t *testing.T) {
	res := retry.Run(context.Background(), func(context.Context) (int, error) {
		panic("always")
	}, retry.Options{Timeout: time.Second})

	assert.False(t, res.Success)
	var panicErr *retry.PanicError
	require.ErrorAs(t, res.Err, &panicErr)
	assert.Equal(t, "always", panicErr.Value)
}

func TestRun_ParentCancelStopsAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	res := retry.Run(ctx, func(context.Context) (int, error) {
		calls.Add(1)
		cancel()
		return 0, errBoom
	}, retry.Options{Timeout: time.Second, Retries: 5})

	assert.False(t, res.Success)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, res.Attempts)
	assert.ErrorIs(t, res.Err, retry.ErrExhausted)
}

func TestRun_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := retry.Run(ctx, func(context.Context) (int, error) {
		t.Error("operation must not run")
		return 0, nil
	}, retry.Options{Timeout: time.Second, Retries: 2})

	assert.False(t, res.Success)
	assert.Equal(t, 0, res.Attempts)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestRun_AttemptContextCancelledAfterTimeout(t *testing.T) {
	released := make(chan struct{})
	res := retry.Run(context.Background(), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(released)
		return 0, ctx.Err()
	}, retry.Options{Timeout: 20 * time.Millisecond})

	assert.ErrorIs(t, res.Err, retry.ErrTimeout)
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("abandoned attempt was not cancelled")
	}
}
