package cache

import "time"

// Entry is a cached value together with the instant it was captured.
// Entries are replaced wholesale, never mutated in place.
type Entry[T any] struct {
	Data      T         `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Age returns how old the entry is at now.
func (e Entry[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.Timestamp)
}

// ValidAt reports whether the entry is still fresh at now for the given TTL.
// An entry whose age equals the TTL is stale.
func (e Entry[T]) ValidAt(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}

// ExpiresAt returns the first instant at which the entry is stale.
func (e Entry[T]) ExpiresAt(ttl time.Duration) time.Time {
	return e.Timestamp.Add(ttl)
}

// TimeUntilExpiration returns the remaining lifetime at now, or 0 if stale.
func (e Entry[T]) TimeUntilExpiration(now time.Time, ttl time.Duration) time.Duration {
	remaining := e.ExpiresAt(ttl).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
