package batch

import (
	"sync"
	"time"
)

// percentMultiplier is used to convert a ratio to percentage (0-100).
const percentMultiplier = 100

// Progress tracks how many tasks of a Settle call have finished.
// It is safe for concurrent use.
type Progress struct {
	total     int
	succeeded int
	failed    int
	startTime time.Time
	lastTime  time.Time

	mu sync.Mutex
}

// NewProgress creates a tracker for total tasks.
func NewProgress(total int) *Progress {
	now := time.Now()
	return &Progress{total: total, startTime: now, lastTime: now}
}

// Record counts one settled task and returns the updated snapshot.
func (p *Progress) Record(err error) ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.failed++
	} else {
		p.succeeded++
	}
	p.lastTime = time.Now()
	return p.snapshotLocked()
}

func (p *Progress) snapshotLocked() ProgressSnapshot {
	done := p.succeeded + p.failed
	pct := 0.0
	if p.total > 0 {
		pct = float64(done) / float64(p.total) * percentMultiplier
	}
	return ProgressSnapshot{
		Total:           p.total,
		Succeeded:       p.succeeded,
		Failed:          p.failed,
		PercentComplete: pct,
		StartTime:       p.startTime,
		LastUpdateTime:  p.lastTime,
		ElapsedTime:     p.lastTime.Sub(p.startTime),
	}
}

// ProgressSnapshot is an immutable view of Progress.
type ProgressSnapshot struct {
	Total           int
	Succeeded       int
	Failed          int
	PercentComplete float64
	StartTime       time.Time
	LastUpdateTime  time.Time
	ElapsedTime     time.Duration
}

// Settled returns the number of finished tasks.
func (s ProgressSnapshot) Settled() int {
	return s.Succeeded + s.Failed
}

// IsComplete reports whether every task has settled.
func (s ProgressSnapshot) IsComplete() bool {
	return s.Settled() >= s.Total
}
