package cache

import "time"

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// Cell is a single-slot TTL cache.
type Cell[T any] struct {
	ttl   time.Duration
	now   Clock
	entry *Entry[T]
}

// CellOption configures a Cell.
type CellOption func(*cellOptions)

type cellOptions struct {
	now Clock
}

// WithClock replaces time.Now as the cell's time source.
func WithClock(now Clock) CellOption {
	return func(o *cellOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewCell returns an empty cell with the given TTL. A non-positive ttl falls
// back to DefaultTTL.
func NewCell[T any](ttl time.Duration, opts ...CellOption) *Cell[T] {
	o := cellOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cell[T]{ttl: ttl, now: o.now}
}

// Valid reports whether an entry exists and is younger than the TTL.
func (c *Cell[T]) Valid() bool {
	return c.entry != nil && c.entry.ValidAt(c.now(), c.ttl)
}

// Get returns the stored value regardless of freshness.
func (c *Cell[T]) Get() (T, bool) {
	if c.entry == nil {
		var zero T
		return zero, false
	}
	return c.entry.Data, true
}

// Entry returns a copy of the stored entry.
func (c *Cell[T]) Entry() (Entry[T], bool) {
	if c.entry == nil {
		return Entry[T]{}, false
	}
	return *c.entry, true
}

// Put stores data stamped with the current time, replacing any prior entry.
func (c *Cell[T]) Put(data T) {
	c.entry = &Entry[T]{Data: data, Timestamp: c.now()}
}

// Invalidate drops the stored entry.
func (c *Cell[T]) Invalidate() {
	c.entry = nil
}

// TTL returns the configured lifetime.
func (c *Cell[T]) TTL() time.Duration {
	return c.ttl
}
