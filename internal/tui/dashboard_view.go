package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/adminboard/internal/engine"
	"github.com/rshade/adminboard/internal/engine/cache"
	"github.com/rshade/adminboard/internal/engine/notify"
)

// categoryBarWidth is the width of the share bars in the categories panel.
const categoryBarWidth = 20

// View renders the current view (Bubble Tea interface).
func (m DashboardModel) View() string {
	switch m.mode {
	case modeQuitting:
		return ""
	case modeStarting:
		return RenderLoading(m.loading)
	case modeReady:
		return m.renderDashboard()
	default:
		return ""
	}
}

func (m DashboardModel) renderDashboard() string {
	sections := []string{m.renderHeader()}

	if banner := m.renderLoadingBanner(); banner != "" {
		sections = append(sections, banner)
	}
	if m.state.Err != nil {
		sections = append(sections, ErrorStyle.Render("✗ "+m.state.ErrMessage()))
	}

	half := m.width/2 - borderPadding
	sections = append(sections,
		m.renderSummary(),
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderPanel(fmt.Sprintf("SALES (%s)", m.currentSalesPeriod()), engine.LineSales, m.salesTable.View(),
				len(m.state.SalesSeries), half),
			m.renderPanel(fmt.Sprintf("USER GROWTH (%s)", m.currentGrowthPeriod()), engine.LineUserGrowth,
				m.growthTable.View(), len(m.state.UserGrowthSeries), half),
		),
		m.renderCategories(),
	)

	if toasts := m.renderToasts(); toasts != "" {
		sections = append(sections, toasts)
	}
	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderHeader() string {
	title := HeaderStyle.Render("ADMIN DASHBOARD")
	if m.state.SummaryFetchedAt.IsZero() {
		return title
	}
	return title + SubtleStyle.Render("  summary updated "+m.state.SummaryFetchedAt.Format("15:04:05")+m.cacheStatus())
}

// cacheStatus describes how long the cached summary stays fresh.
func (m DashboardModel) cacheStatus() string {
	entry, ok := m.ctrl.SummaryCacheEntry()
	if !ok {
		return ""
	}
	remaining := entry.TimeUntilExpiration(m.now(), m.ctrl.SummaryCacheTTL())
	if remaining == 0 {
		return ", cache expired"
	}
	return ", cached, expires in " + cache.FormatDuration(remaining)
}

// renderLoadingBanner lists the lines currently in flight.
func (m DashboardModel) renderLoadingBanner() string {
	lines := m.state.LoadingLines()
	if len(lines) == 0 && !m.refreshing {
		return ""
	}

	msg := "Refreshing dashboard"
	if len(lines) > 0 {
		names := make([]string, len(lines))
		for i, l := range lines {
			names[i] = l.Label()
		}
		msg = "Loading " + strings.Join(names, ", ")
	}
	if p := m.state.LoadProgress; !p.IsComplete() {
		msg += fmt.Sprintf(" (%d/%d lines)", p.Settled(), p.Total)
	}

	return InfoStyle.
		Width(m.width-borderPadding).
		Padding(0, 1).
		Render(m.loading.Frame() + " " + msg)
}

func (m DashboardModel) renderSummary() string {
	var content strings.Builder
	content.WriteString(HeaderStyle.Render("SUMMARY"))
	content.WriteString("\n")

	switch {
	case m.state.Summary != nil:
		s := m.state.Summary
		g := s.MonthlyGrowth
		writeMetric(&content, "Total users", engine.FormatCount(s.TotalUsers), trend(g.Users))
		writeMetric(&content, "Active users", engine.FormatCount(s.ActiveUsers), "")
		writeMetric(&content, "Suppliers", engine.FormatCount(s.TotalSuppliers), "")
		writeMetric(&content, "Orders", engine.FormatCount(s.TotalOrders), trend(g.Orders))
		writeMetric(&content, "Revenue", engine.FormatCurrency(s.TotalRevenue, m.precision), trend(g.Revenue))
		writeMetric(&content, "Pending verifications", engine.FormatCount(s.PendingVerifications), "")
	default:
		content.WriteString(m.placeholder(engine.LineSummary))
	}

	return BoxStyle.Width(m.width - borderPadding).Render(strings.TrimRight(content.String(), "\n"))
}

func writeMetric(b *strings.Builder, label, value, change string) {
	b.WriteString(LabelStyle.Render(fmt.Sprintf("  %-22s", label)))
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%14s", value)))
	if change != "" {
		b.WriteString("  ")
		b.WriteString(change)
	}
	b.WriteString("\n")
}

func trend(pct float64) string {
	text := engine.TrendArrow(pct) + " " + engine.FormatPercentChange(pct)
	switch {
	case pct > 0:
		return TrendUpStyle.Render(text)
	case pct < 0:
		return TrendDownStyle.Render(text)
	default:
		return SubtleStyle.Render(text)
	}
}

func (m DashboardModel) renderPanel(title string, line engine.Line, body string, points, width int) string {
	content := HeaderStyle.Render(title) + "\n"
	if points == 0 {
		content += m.placeholder(line)
	} else {
		content += body
	}
	return BoxStyle.Width(width).Render(content)
}

func (m DashboardModel) renderCategories() string {
	var content strings.Builder
	content.WriteString(HeaderStyle.Render("CATEGORIES"))
	content.WriteString("\n")

	dist := m.state.CategoryDistribution
	if dist == nil || len(dist.Labels) == 0 {
		content.WriteString(m.placeholder(engine.LineCategories))
		return BoxStyle.Width(m.width - borderPadding).Render(content.String())
	}

	ds := dist.Dataset()
	total := dist.Total()
	for i, label := range dist.Labels {
		v, color := 0.0, ""
		if i < len(ds.Data) {
			v = ds.Data[i]
		}
		if i < len(ds.BackgroundColor) {
			color = ds.BackgroundColor[i]
		}
		share := 0.0
		if total > 0 {
			share = v / total
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
		fmt.Fprintf(&content, "  %s %-18s %8s %s\n",
			swatch, label, engine.FormatDecimal(v, 0), engine.ShareBar(share, categoryBarWidth))
	}
	return BoxStyle.Width(m.width - borderPadding).Render(strings.TrimRight(content.String(), "\n"))
}

// placeholder explains why a line has nothing to show.
func (m DashboardModel) placeholder(line engine.Line) string {
	info := m.state.Line(line)
	switch info.Status {
	case engine.StatusLoading:
		return SubtleStyle.Render("loading...")
	case engine.StatusFailed:
		return ErrorStyle.Render("unavailable")
	case engine.StatusIdle, engine.StatusSuccess:
		return SubtleStyle.Render("no data")
	default:
		return SubtleStyle.Render("no data")
	}
}

func (m DashboardModel) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		rendered = append(rendered, renderToast(t.event))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func renderToast(ev notify.Event) string {
	text := ev.Title
	if ev.Message != "" {
		text += ": " + ev.Message
	}
	switch ev.Severity {
	case notify.SeverityError:
		return ErrorStyle.Render("✗ " + text)
	case notify.SeveritySuccess:
		return SuccessStyle.Render("✓ " + text)
	case notify.SeverityWarning:
		return WarningStyle.Render("! " + text)
	case notify.SeverityInfo:
		return LabelStyle.Render("i " + text)
	default:
		return text
	}
}

func (m DashboardModel) renderStatusBar() string {
	status := "r: refresh | f: force summary | p: sales period | g: growth period | esc: clear | q: quit"
	if m.initErr != nil {
		status = "initial load incomplete | " + status
	}
	return SubtleStyle.Render(status)
}
