package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPeriod is returned when a series period is not recognised.
var ErrInvalidPeriod = errors.New("invalid period")

// GrowthRates holds month-over-month changes as signed percentages.
type GrowthRates struct {
	Users   float64 `json:"users"`
	Orders  float64 `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// DashboardSummary is the headline statistics block of the dashboard.
// A summary is replaced wholesale on every successful fetch.
type DashboardSummary struct {
	TotalUsers           int         `json:"totalUsers"`
	TotalSuppliers       int         `json:"totalSuppliers"`
	TotalOrders          int         `json:"totalOrders"`
	TotalRevenue         float64     `json:"totalRevenue"`
	PendingVerifications int         `json:"pendingVerifications"`
	ActiveUsers          int         `json:"activeUsers"`
	MonthlyGrowth        GrowthRates `json:"monthlyGrowth"`
}

// SalesPoint is one bucket of the sales series.
type SalesPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// UserGrowthPoint is one bucket of the user growth series.
type UserGrowthPoint struct {
	Date       string `json:"date"`
	NewUsers   int    `json:"newUsers"`
	TotalUsers int    `json:"totalUsers"`
}

// TimeSeries is an ordered list of points as returned by the source.
// Points are neither sorted nor deduplicated.
type TimeSeries[P any] []P

// Clone returns an independent copy of the series.
func (s TimeSeries[P]) Clone() TimeSeries[P] {
	if s == nil {
		return nil
	}
	out := make(TimeSeries[P], len(s))
	copy(out, s)
	return out
}

// SalesPeriod is the bucket size of the sales series.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver; String uses a value receiver.
type SalesPeriod string

// Sales periods.
const (
	SalesDay   SalesPeriod = "day"
	SalesWeek  SalesPeriod = "week"
	SalesMonth SalesPeriod = "month"
	SalesYear  SalesPeriod = "year"
)

// SalesPeriods lists the accepted sales periods in display order.
func SalesPeriods() []SalesPeriod {
	return []SalesPeriod{SalesDay, SalesWeek, SalesMonth, SalesYear}
}

// ParseSalesPeriod parses a case-insensitive sales period.
func ParseSalesPeriod(s string) (SalesPeriod, error) {
	p := SalesPeriod(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: sales period %q (want day, week, month or year)", ErrInvalidPeriod, s)
	}
	return p, nil
}

// Valid reports whether p is a known sales period.
func (p SalesPeriod) Valid() bool {
	switch p {
	case SalesDay, SalesWeek, SalesMonth, SalesYear:
		return true
	default:
		return false
	}
}

// Next returns the following period, wrapping around.
func (p SalesPeriod) Next() SalesPeriod {
	return nextPeriod(SalesPeriods(), p)
}

// String implements fmt.Stringer.
func (p SalesPeriod) String() string { return string(p) }

// UnmarshalJSON rejects unknown periods.
func (p *SalesPeriod) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing sales period: %w", err)
	}
	parsed, err := ParseSalesPeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// GrowthPeriod is the bucket size of the user growth series.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver; String uses a value receiver.
type GrowthPeriod string

// Growth periods.
const (
	GrowthWeek  GrowthPeriod = "week"
	GrowthMonth GrowthPeriod = "month"
	GrowthYear  GrowthPeriod = "year"
)

// GrowthPeriods lists the accepted growth periods in display order.
func GrowthPeriods() []GrowthPeriod {
	return []GrowthPeriod{GrowthWeek, GrowthMonth, GrowthYear}
}

// ParseGrowthPeriod parses a case-insensitive growth period.
func ParseGrowthPeriod(s string) (GrowthPeriod, error) {
	p := GrowthPeriod(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: growth period %q (want week, month or year)", ErrInvalidPeriod, s)
	}
	return p, nil
}

// Valid reports whether p is a known growth period.
func (p GrowthPeriod) Valid() bool {
	switch p {
	case GrowthWeek, GrowthMonth, GrowthYear:
		return true
	default:
		return false
	}
}

// Next returns the following period, wrapping around.
func (p GrowthPeriod) Next() GrowthPeriod {
	return nextPeriod(GrowthPeriods(), p)
}

// String implements fmt.Stringer.
func (p GrowthPeriod) String() string { return string(p) }

// UnmarshalJSON rejects unknown periods.
func (p *GrowthPeriod) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing growth period: %w", err)
	}
	parsed, err := ParseGrowthPeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func nextPeriod[P comparable](all []P, cur P) P {
	for i, p := range all {
		if p == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// DataSource is the remote provider of dashboard data.
type DataSource interface {
	GetSummary(ctx context.Context) (DashboardSummary, error)
	GetSalesSeries(ctx context.Context, period SalesPeriod) (TimeSeries[SalesPoint], error)
	GetUserGrowthSeries(ctx context.Context, period GrowthPeriod) (TimeSeries[UserGrowthPoint], error)
	GetCategoryDistribution(ctx context.Context) (CategoryDistribution, error)
}
