package retry

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for errors.Is matching.
var (
	// ErrTimeout is matched by every attempt that lost the race to its timer.
	ErrTimeout = errors.New("operation timed out")

	// ErrExhausted is matched by the final failure after all attempts failed.
	ErrExhausted = errors.New("retry attempts exhausted")
)

// TimeoutError reports an attempt that did not complete within its deadline.
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Operation, e.Timeout)
}

// Kind names the failure class for telemetry.
func (e *TimeoutError) Kind() string { return "timeout" }

// Is makes errors.Is(err, ErrTimeout) succeed.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// ExhaustedError is the final failure of Run. It wraps the last attempt's error.
type ExhaustedError struct {
	Operation string
	Attempts  int
	Last      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Operation, e.Attempts, e.Last)
}

// Unwrap exposes the last attempt's error.
func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Is makes errors.Is(err, ErrExhausted) succeed.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// PanicError carries a value recovered from a panicking operation.
type PanicError struct {
	Operation string
	Value     any
}

// Kind names the failure class for telemetry.
func (e *PanicError) Kind() string { return "panic" }

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Operation, e.Value)
}
