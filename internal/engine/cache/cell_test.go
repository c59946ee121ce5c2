package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/adminboard/internal/engine/cache"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// TestCell_Empty verifies an empty cell is never valid.
func TestCell_Empty(t *testing.T) {
	cell := cache.NewCell[int](time.Minute)

	assert.False(t, cell.Valid())
	v, ok := cell.Get()
	assert.False(t, ok)
	assert.Zero(t, v)

	_, ok = cell.Entry()
	assert.False(t, ok)
}

// TestCell_ValidityBoundary checks validity on both sides of the TTL for a
// range of TTLs. Exact equality must be stale.
func TestCell_ValidityBoundary(t *testing.T) {
	ttls := []time.Duration{time.Second, time.Minute, cache.DefaultTTL, 90 * time.Minute}

	for _, ttl := range ttls {
		t.Run(ttl.String(), func(t *testing.T) {
			elapsed := []struct {
				name  string
				t     time.Duration
				valid bool
			}{
				{"zero", 0, true},
				{"half", ttl / 2, true},
				{"just before", ttl - time.Nanosecond, true},
				{"exactly ttl", ttl, false},
				{"just after", ttl + time.Nanosecond, false},
				{"double", 2 * ttl, false},
			}

			for _, e := range elapsed {
				clock := newFakeClock()
				cell := cache.NewCell[string](ttl, cache.WithClock(clock.Now))
				cell.Put("summary")
				clock.Advance(e.t)

				assert.Equal(t, e.valid, cell.Valid(), "elapsed %s", e.name)
			}
		})
	}
}

// TestCell_PutOverwrites verifies Put replaces data and timestamp.
func TestCell_PutOverwrites(t *testing.T) {
	clock := newFakeClock()
	cell := cache.NewCell[int](cache.DefaultTTL, cache.WithClock(clock.Now))

	cell.Put(1)
	first, _ := cell.Entry()

	clock.Advance(4 * time.Minute)
	cell.Put(2)
	second, ok := cell.Entry()
	require.True(t, ok)

	assert.Equal(t, 2, second.Data)
	assert.True(t, second.Timestamp.After(first.Timestamp))

	// The refreshed timestamp restarts the TTL window.
	clock.Advance(4 * time.Minute)
	assert.True(t, cell.Valid())
}

// TestCell_GetReturnsStaleData verifies Get ignores freshness.
func TestCell_GetReturnsStaleData(t *testing.T) {
	clock := newFakeClock()
	cell := cache.NewCell[int](time.Minute, cache.WithClock(clock.Now))
	cell.Put(7)
	clock.Advance(time.Hour)

	assert.False(t, cell.Valid())
	v, ok := cell.Get()
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

// TestCell_Invalidate verifies the entry is dropped.
func TestCell_Invalidate(t *testing.T) {
	cell := cache.NewCell[int](time.Minute)
	cell.Put(3)
	require.True(t, cell.Valid())

	cell.Invalidate()
	assert.False(t, cell.Valid())
	_, ok := cell.Get()
	assert.False(t, ok)
}

// TestNewCell_DefaultTTL verifies non-positive TTLs fall back to the default.
func TestNewCell_DefaultTTL(t *testing.T) {
	assert.Equal(t, cache.DefaultTTL, cache.NewCell[int](0).TTL())
	assert.Equal(t, cache.DefaultTTL, cache.NewCell[int](-time.Second).TTL())
	assert.Equal(t, time.Minute, cache.NewCell[int](time.Minute).TTL())
}

// TestEntry_TimeUntilExpiration verifies remaining lifetime is clamped at 0.
func TestEntry_TimeUntilExpiration(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	entry := cache.Entry[int]{Data: 1, Timestamp: ts}

	assert.Equal(t, 3*time.Minute, entry.TimeUntilExpiration(ts.Add(2*time.Minute), 5*time.Minute))
	assert.Equal(t, time.Duration(0), entry.TimeUntilExpiration(ts.Add(10*time.Minute), 5*time.Minute))
	assert.Equal(t, ts.Add(5*time.Minute), entry.ExpiresAt(5*time.Minute))
}
