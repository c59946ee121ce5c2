package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// tabwriterPadding is the minimum padding between columns.
const tabwriterPadding = 2

// barWidth is the width of the share bar in the category table.
const barWidth = 20

// percentMultiplier converts a ratio to a percentage.
const percentMultiplier = 100

// RenderOptions controls plain rendering.
type RenderOptions struct {
	// Precision is the number of decimals for money. Zero means DefaultPrecision.
	Precision int
}

func (o RenderOptions) precision() int {
	if o.Precision <= 0 {
		return DefaultPrecision
	}
	return o.Precision
}

// RenderDashboard writes every section of state as plain text tables.
// Lines that failed are reported in place of their table.
func RenderDashboard(w io.Writer, state ViewState, opts RenderOptions) error {
	sections := []func() error{
		func() error { return renderSection(w, state, LineSummary, "SUMMARY", summaryBody(state, opts)) },
		func() error {
			title := fmt.Sprintf("SALES (%s)", state.SalesPeriod)
			return renderSection(w, state, LineSales, title, salesBody(state.SalesSeries, opts))
		},
		func() error {
			title := fmt.Sprintf("USER GROWTH (%s)", state.GrowthPeriod)
			return renderSection(w, state, LineUserGrowth, title, growthBody(state.UserGrowthSeries))
		},
		func() error {
			return renderSection(w, state, LineCategories, "CATEGORIES", categoriesBody(state.CategoryDistribution))
		},
	}

	for i, section := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return fmt.Errorf("writing separator: %w", err)
			}
		}
		if err := section(); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary writes the summary block.
func RenderSummary(w io.Writer, s DashboardSummary, opts RenderOptions) error {
	return writeTable(w, summaryRows(s, opts))
}

// RenderSalesSeries writes the sales series as a table.
func RenderSalesSeries(w io.Writer, series TimeSeries[SalesPoint], opts RenderOptions) error {
	return writeTable(w, salesBody(series, opts))
}

// RenderUserGrowthSeries writes the user growth series as a table.
func RenderUserGrowthSeries(w io.Writer, series TimeSeries[UserGrowthPoint]) error {
	return writeTable(w, growthBody(series))
}

// RenderCategories writes the category distribution with share bars.
func RenderCategories(w io.Writer, dist CategoryDistribution) error {
	return writeTable(w, categoriesBody(&dist))
}

// RenderJSON writes v as indented JSON.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// DashboardJSON is the JSON document for a full dashboard render.
type DashboardJSON struct {
	ViewState
	Errors map[string]string `json:"errors,omitempty"`
}

// NewDashboardJSON prepares state for RenderJSON, including per-line errors.
func NewDashboardJSON(state ViewState) DashboardJSON {
	out := DashboardJSON{ViewState: state}
	for _, l := range DataLines() {
		if err := state.Line(l).Err; err != nil {
			if out.Errors == nil {
				out.Errors = make(map[string]string)
			}
			out.Errors[l.String()] = err.Error()
		}
	}
	return out
}

func renderSection(w io.Writer, state ViewState, line Line, title string, rows [][]string) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return fmt.Errorf("writing title: %w", err)
	}
	info := state.Line(line)
	if info.Status == StatusFailed && info.Err != nil {
		_, err := fmt.Fprintf(w, "  error: %s\n", info.Err)
		return err
	}
	if len(rows) <= 1 {
		_, err := fmt.Fprintln(w, "  no data")
		return err
	}
	return writeTable(w, rows)
}

func writeTable(w io.Writer, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	return tw.Flush()
}

func summaryBody(state ViewState, opts RenderOptions) [][]string {
	if state.Summary == nil {
		return nil
	}
	return summaryRows(*state.Summary, opts)
}

func summaryRows(s DashboardSummary, opts RenderOptions) [][]string {
	g := s.MonthlyGrowth
	return [][]string{
		{"METRIC", "VALUE", "MONTHLY CHANGE"},
		{"Total users", FormatCount(s.TotalUsers), TrendArrow(g.Users) + " " + FormatPercentChange(g.Users)},
		{"Active users", FormatCount(s.ActiveUsers), ""},
		{"Suppliers", FormatCount(s.TotalSuppliers), ""},
		{"Orders", FormatCount(s.TotalOrders), TrendArrow(g.Orders) + " " + FormatPercentChange(g.Orders)},
		{"Revenue", FormatCurrency(s.TotalRevenue, opts.precision()), TrendArrow(g.Revenue) + " " + FormatPercentChange(g.Revenue)},
		{"Pending verifications", FormatCount(s.PendingVerifications), ""},
	}
}

func salesBody(series TimeSeries[SalesPoint], opts RenderOptions) [][]string {
	rows := [][]string{{"DATE", "REVENUE", "ORDERS"}}
	for _, p := range series {
		rows = append(rows, []string{p.Date, FormatCurrency(p.Revenue, opts.precision()), FormatCount(p.Orders)})
	}
	return rows
}

func growthBody(series TimeSeries[UserGrowthPoint]) [][]string {
	rows := [][]string{{"DATE", "NEW USERS", "TOTAL USERS"}}
	for _, p := range series {
		rows = append(rows, []string{p.Date, FormatCount(p.NewUsers), FormatCount(p.TotalUsers)})
	}
	return rows
}

func categoriesBody(dist *CategoryDistribution) [][]string {
	rows := [][]string{{"CATEGORY", "COUNT", "SHARE", ""}}
	if dist == nil {
		return rows
	}
	total := dist.Total()
	data := dist.Dataset().Data
	for i, label := range dist.Labels {
		v := 0.0
		if i < len(data) {
			v = data[i]
		}
		share := 0.0
		if total > 0 {
			share = v / total
		}
		rows = append(rows, []string{
			label,
			FormatDecimal(v, 0),
			fmt.Sprintf("%.1f%%", share*percentMultiplier),
			ShareBar(share, barWidth),
		})
	}
	return rows
}

// ShareBar draws a horizontal bar of width cells filled to share (0..1).
func ShareBar(share float64, width int) string {
	if width <= 0 {
		return ""
	}
	if share < 0 {
		share = 0
	}
	if share > 1 {
		share = 1
	}
	filled := int(share*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
