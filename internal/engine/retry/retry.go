// Package retry runs context-aware operations under a per-attempt deadline and
// a bounded retry budget.
//
// Attempts are retried immediately, with no back-off or jitter. An attempt
// that outlives its deadline is abandoned: Run stops waiting for it, but the
// operation itself is only told to stop through its context. Operations that
// ignore their context keep running in the background until they return.
package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/adminboard/internal/logging"
)

// Default settings used when Options leaves a field zero.
const (
	DefaultTimeout       = 10 * time.Second
	DefaultOperationName = "operation"
)

// Options configures Run.
type Options struct {
	// Timeout bounds each attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// Retries is the number of extra attempts after the first one.
	Retries int
	// OperationName tags timeout and exhaustion errors.
	OperationName string
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.OperationName == "" {
		o.OperationName = DefaultOperationName
	}
	return o
}

// Result is the uniform outcome of Run. Exactly one of Value (with Success)
// or Err is meaningful.
type Result[T any] struct {
	Success  bool
	Value    T
	Err      error
	Attempts int
}

// Op is the operation executed by Run.
type Op[T any] func(ctx context.Context) (T, error)

type outcome[T any] struct {
	value T
	err   error
}

// Run executes op up to opts.Retries+1 times and returns the first success.
// Each attempt races op against a timer of opts.Timeout. When every attempt
// fails, Result.Err is an *ExhaustedError wrapping the last attempt's error.
// Run never panics; a panicking op counts as a failed attempt.
func Run[T any](ctx context.Context, op Op[T], opts Options) Result[T] {
	opts = opts.withDefaults()
	log := logging.FromContext(ctx)

	var lastErr error
	attempts := 0
	maxAttempts := opts.Retries + 1

	for attempts < maxAttempts {
		if ctx.Err() != nil {
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			break
		}

		attempts++
		value, err := attempt(ctx, op, opts)
		if err == nil {
			if attempts > 1 {
				log.Debug().Ctx(ctx).
					Str("component", "retry").
					Str("operation", opts.OperationName).
					Int("attempts", attempts).
					Msg("operation succeeded after retry")
			}
			return Result[T]{Success: true, Value: value, Attempts: attempts}
		}

		lastErr = err
		logAttemptFailure(ctx, log, opts, attempts, maxAttempts, err)
	}

	return Result[T]{
		Err: &ExhaustedError{
			Operation: opts.OperationName,
			Attempts:  attempts,
			Last:      lastErr,
		},
		Attempts: attempts,
	}
}

// attempt runs op once with its own deadline.
func attempt[T any](ctx context.Context, op Op[T], opts Options) (T, error) {
	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so an abandoned attempt can still deliver and exit.
	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: &PanicError{Operation: opts.OperationName, Value: r}}
			}
		}()
		v, err := op(attemptCtx)
		done <- outcome[T]{value: v, err: err}
	}()

	timer := time.NewTimer(opts.Timeout)
	defer timer.Stop()

	var zero T
	select {
	case out := <-done:
		return out.value, out.err
	case <-timer.C:
		return zero, &TimeoutError{Operation: opts.OperationName, Timeout: opts.Timeout}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func logAttemptFailure(ctx context.Context, log *zerolog.Logger, opts Options, n, maxAttempts int, err error) {
	log.Debug().Ctx(ctx).
		Str("component", "retry").
		Str("operation", opts.OperationName).
		Int("attempt", n).
		Int("max_attempts", maxAttempts).
		Err(err).
		Msg("attempt failed")
}
