package engine

import (
	"errors"
	"fmt"
	"strings"
)

// maxMessageLen is the maximum length of a FetchError detail.
const maxMessageLen = 512

// FetchError is the normalised failure of one dashboard line. Every error
// that reaches ViewState or the notifier has this shape.
type FetchError struct {
	Line    Line
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Detail returns the cause's message, trimmed for display.
func (e *FetchError) Detail() string {
	if e.Err == nil {
		return ""
	}
	msg := strings.TrimSpace(e.Err.Error())
	if len(msg) > maxMessageLen {
		runes := []rune(msg)
		if len(runes) > maxMessageLen {
			msg = string(runes[:maxMessageLen]) + "..."
		}
	}
	return msg
}

// newFetchError normalises err for line. An existing FetchError is kept.
func newFetchError(line Line, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) && fe.Line == line {
		return fe
	}
	return &FetchError{
		Line:    line,
		Message: fmt.Sprintf("Failed to load %s", line.Label()),
		Err:     err,
	}
}
