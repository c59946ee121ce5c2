package engine

import (
	"time"

	"github.com/rshade/adminboard/internal/engine/batch"
)

// ViewState is the merged dashboard state. The orchestrator owns the live
// value; consumers only ever see copies from Snapshot.
type ViewState struct {
	Summary              *DashboardSummary           `json:"summary"`
	SalesSeries          TimeSeries[SalesPoint]      `json:"salesSeries"`
	UserGrowthSeries     TimeSeries[UserGrowthPoint] `json:"userGrowthSeries"`
	CategoryDistribution *CategoryDistribution       `json:"categoryDistribution"`
	SalesPeriod          SalesPeriod                 `json:"salesPeriod"`
	GrowthPeriod         GrowthPeriod                `json:"growthPeriod"`
	IsLoading            bool                        `json:"isLoading"`
	Err                  error                       `json:"-"`
	Lines                map[Line]LineInfo           `json:"-"`
	SummaryFetchedAt     time.Time                   `json:"summaryFetchedAt,omitzero"`

	// LoadProgress counts the settled lines of the latest RefreshAll.
	LoadProgress batch.ProgressSnapshot `json:"-"`

	// Revision increases on every change. Consumers receiving snapshots out
	// of order keep the highest one.
	Revision uint64 `json:"-"`
}

// Snapshot returns a deep copy of v.
func (v ViewState) Snapshot() ViewState {
	out := v
	if v.Summary != nil {
		s := *v.Summary
		out.Summary = &s
	}
	out.SalesSeries = v.SalesSeries.Clone()
	out.UserGrowthSeries = v.UserGrowthSeries.Clone()
	if v.CategoryDistribution != nil {
		c := v.CategoryDistribution.Clone()
		out.CategoryDistribution = &c
	}
	if v.Lines != nil {
		out.Lines = make(map[Line]LineInfo, len(v.Lines))
		for k, info := range v.Lines {
			out.Lines[k] = info
		}
	}
	return out
}

// Line returns the state of line l.
func (v ViewState) Line(l Line) LineInfo {
	return v.Lines[l]
}

// LoadingLines returns the lines currently in flight, in display order.
func (v ViewState) LoadingLines() []Line {
	var out []Line
	for _, l := range DataLines() {
		if v.Lines[l].Status == StatusLoading {
			out = append(out, l)
		}
	}
	return out
}

// ErrMessage returns the error text, or "" when there is no error.
func (v ViewState) ErrMessage() string {
	if v.Err == nil {
		return ""
	}
	return v.Err.Error()
}
