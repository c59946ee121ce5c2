package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// Line identifies one independently fetched part of the dashboard.
type Line int

const (
	// LineSummary is the headline statistics request.
	LineSummary Line = iota
	// LineSales is the sales series request.
	LineSales
	// LineUserGrowth is the user growth series request.
	LineUserGrowth
	// LineCategories is the category distribution request.
	LineCategories

	// LineRefresh tags failures of the coordinated manual refresh as a whole.
	// It has no status entry of its own.
	LineRefresh
)

// lineCount is the number of data lines tracked in ViewState.
const lineCount = int(LineCategories) + 1

// DataLines returns every data line in display order.
func DataLines() []Line {
	return []Line{LineSummary, LineSales, LineUserGrowth, LineCategories}
}

// String returns the machine name of the line.
func (l Line) String() string {
	switch l {
	case LineSummary:
		return "summary"
	case LineSales:
		return "sales"
	case LineUserGrowth:
		return "user_growth"
	case LineCategories:
		return "categories"
	case LineRefresh:
		return "refresh"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

// Label returns a human-readable name for the line.
func (l Line) Label() string {
	switch l {
	case LineSummary:
		return "dashboard statistics"
	case LineSales:
		return "sales data"
	case LineUserGrowth:
		return "user growth data"
	case LineCategories:
		return "category distribution"
	case LineRefresh:
		return "dashboard"
	default:
		return l.String()
	}
}

// MarshalJSON implements json.Marshaler to output Line as string.
func (l Line) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// LineStatus is the lifecycle state of a data line.
type LineStatus int

const (
	// StatusIdle means the line has never been fetched.
	StatusIdle LineStatus = iota
	// StatusLoading means a fetch for the line is in flight.
	StatusLoading
	// StatusSuccess means the latest fetch succeeded.
	StatusSuccess
	// StatusFailed means the latest fetch failed.
	StatusFailed
)

// String returns the lowercase status name.
func (s LineStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MarshalJSON implements json.Marshaler to output LineStatus as string.
func (s LineStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// LineInfo is the externally visible state of one line.
type LineInfo struct {
	Status    LineStatus `json:"status"`
	Err       error      `json:"-"`
	UpdatedAt time.Time  `json:"updatedAt,omitzero"`
}

// lineState is the orchestrator's bookkeeping for one line.
//
// gen is bumped each time a fetch is issued. A completion carrying an older
// gen is stale and must not touch ViewState.
type lineState struct {
	info     LineInfo
	settled  LineInfo
	gen      uint64
	inFlight int
}

// begin marks a new fetch as issued and returns its generation.
func (s *lineState) begin() uint64 {
	s.gen++
	s.inFlight++
	s.info.Status = StatusLoading
	return s.gen
}

// finish records a completion and reports whether it is still current.
func (s *lineState) finish(gen uint64, err error, now time.Time) bool {
	s.inFlight--
	if gen != s.gen {
		return false
	}
	if err != nil {
		s.info.Status = StatusFailed
		s.info.Err = err
	} else {
		s.info.Status = StatusSuccess
		s.info.Err = nil
	}
	s.info.UpdatedAt = now
	s.settled = s.info
	return true
}

// abandon releases a fetch whose result must not be recorded. When it was
// the line's latest fetch, the line goes back to its last settled state and
// later completions of that generation are stale.
func (s *lineState) abandon(gen uint64) {
	s.inFlight--
	if gen != s.gen {
		return
	}
	s.gen++
	s.info = s.settled
}
