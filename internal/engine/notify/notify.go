// Package notify holds the user-notification callback used by the dashboard
// orchestrator.
//
// The callback can be replaced at any time. A completion that fires after a
// replacement always reaches the newest callback, never the one that was
// current when the work started.
package notify

import "sync/atomic"

// Severity classifies a notification for display.
type Severity int

// Severity levels.
const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a single user-facing notification.
type Event struct {
	Severity Severity
	Title    string
	Message  string
}

// Func receives notifications.
type Func func(Event)

// Ref is a single-slot cell whose value can be swapped without locking.
type Ref[T any] struct {
	p atomic.Pointer[T]
}

// NewRef returns a Ref holding v.
func NewRef[T any](v T) *Ref[T] {
	r := &Ref[T]{}
	r.Store(v)
	return r
}

// Store replaces the held value.
func (r *Ref[T]) Store(v T) {
	r.p.Store(&v)
}

// Load returns the held value, or the zero value if nothing was stored.
func (r *Ref[T]) Load() T {
	if v := r.p.Load(); v != nil {
		return *v
	}
	var zero T
	return zero
}

// Notifier forwards events to the most recently set callback.
// The zero value is ready to use and drops every event.
type Notifier struct {
	current Ref[Func]
}

// New returns a Notifier initialised with fn, which may be nil.
func New(fn Func) *Notifier {
	n := &Notifier{}
	n.Set(fn)
	return n
}

// Set replaces the callback.
func (n *Notifier) Set(fn Func) {
	n.current.Store(fn)
}

// Notify invokes the callback current at call time. A nil callback is a no-op.
func (n *Notifier) Notify(ev Event) {
	if n == nil {
		return
	}
	if fn := n.current.Load(); fn != nil {
		fn(ev)
	}
}

// Error is shorthand for an error-severity event.
func (n *Notifier) Error(title, message string) {
	n.Notify(Event{Severity: SeverityError, Title: title, Message: message})
}
