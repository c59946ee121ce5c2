package adminapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rshade/adminboard/internal/engine"
)

// Dashboard endpoint paths.
const (
	PathStats      = "/api/admin/dashboard/stats"
	PathSales      = "/api/admin/dashboard/sales"
	PathUserGrowth = "/api/admin/dashboard/user-growth"
	PathCategories = "/api/admin/dashboard/categories"
)

// Client implements engine.DataSource.
var _ engine.DataSource = (*Client)(nil)

// statsDTO is the wire form of the stats endpoint.
type statsDTO struct {
	TotalUsers           int             `json:"totalUsers"`
	TotalSuppliers       int             `json:"totalSuppliers"`
	TotalOrders          int             `json:"totalOrders"`
	TotalRevenue         float64         `json:"totalRevenue"`
	PendingVerifications int             `json:"pendingVerifications"`
	ActiveUsers          int             `json:"activeUsers"`
	MonthlyGrowth        *growthRatesDTO `json:"monthlyGrowth"`
}

type growthRatesDTO struct {
	Users   float64 `json:"users"`
	Orders  float64 `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type salesPointDTO struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type userGrowthPointDTO struct {
	Date       string `json:"date"`
	NewUsers   int    `json:"newUsers"`
	TotalUsers int    `json:"totalUsers"`
}

type categoryCountDTO struct {
	Category string  `json:"category"`
	Count    float64 `json:"count"`
}

// GetSummary fetches the headline statistics.
func (c *Client) GetSummary(ctx context.Context) (engine.DashboardSummary, error) {
	var dto statsDTO
	if err := c.do(ctx, http.MethodGet, PathStats, nil, nil, &dto); err != nil {
		return engine.DashboardSummary{}, err
	}
	return toSummary(dto), nil
}

// GetSalesSeries fetches the sales series for period.
func (c *Client) GetSalesSeries(
	ctx context.Context,
	period engine.SalesPeriod,
) (engine.TimeSeries[engine.SalesPoint], error) {
	var dto []salesPointDTO
	q := url.Values{"period": []string{period.String()}}
	if err := c.do(ctx, http.MethodGet, PathSales, q, nil, &dto); err != nil {
		return nil, err
	}
	return toSalesSeries(dto), nil
}

// GetUserGrowthSeries fetches the user growth series for period.
func (c *Client) GetUserGrowthSeries(
	ctx context.Context,
	period engine.GrowthPeriod,
) (engine.TimeSeries[engine.UserGrowthPoint], error) {
	var dto []userGrowthPointDTO
	q := url.Values{"period": []string{period.String()}}
	if err := c.do(ctx, http.MethodGet, PathUserGrowth, q, nil, &dto); err != nil {
		return nil, err
	}
	return toUserGrowthSeries(dto), nil
}

// GetCategoryDistribution fetches order counts per category.
func (c *Client) GetCategoryDistribution(ctx context.Context) (engine.CategoryDistribution, error) {
	var dto []categoryCountDTO
	if err := c.do(ctx, http.MethodGet, PathCategories, nil, nil, &dto); err != nil {
		return engine.CategoryDistribution{}, err
	}
	return toCategoryDistribution(dto), nil
}

func toSummary(dto statsDTO) engine.DashboardSummary {
	s := engine.DashboardSummary{
		TotalUsers:           dto.TotalUsers,
		TotalSuppliers:       dto.TotalSuppliers,
		TotalOrders:          dto.TotalOrders,
		TotalRevenue:         dto.TotalRevenue,
		PendingVerifications: dto.PendingVerifications,
		ActiveUsers:          dto.ActiveUsers,
	}
	if g := dto.MonthlyGrowth; g != nil {
		s.MonthlyGrowth = engine.GrowthRates{Users: g.Users, Orders: g.Orders, Revenue: g.Revenue}
	}
	return s
}

func toSalesSeries(dto []salesPointDTO) engine.TimeSeries[engine.SalesPoint] {
	out := make(engine.TimeSeries[engine.SalesPoint], 0, len(dto))
	for _, p := range dto {
		out = append(out, engine.SalesPoint{Date: p.Date, Revenue: p.Revenue, Orders: p.Orders})
	}
	return out
}

func toUserGrowthSeries(dto []userGrowthPointDTO) engine.TimeSeries[engine.UserGrowthPoint] {
	out := make(engine.TimeSeries[engine.UserGrowthPoint], 0, len(dto))
	for _, p := range dto {
		out = append(out, engine.UserGrowthPoint{Date: p.Date, NewUsers: p.NewUsers, TotalUsers: p.TotalUsers})
	}
	return out
}

func toCategoryDistribution(dto []categoryCountDTO) engine.CategoryDistribution {
	labels := make([]string, len(dto))
	values := make([]float64, len(dto))
	for i, c := range dto {
		labels[i] = c.Category
		values[i] = c.Count
	}
	return engine.NewCategoryDistribution(labels, values)
}
