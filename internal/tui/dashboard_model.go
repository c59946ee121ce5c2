// Package tui renders the interactive dashboard with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/adminboard/internal/engine"
	"github.com/rshade/adminboard/internal/engine/cache"
	"github.com/rshade/adminboard/internal/engine/notify"
	"github.com/rshade/adminboard/internal/engine/retry"
)

const (
	// toastLifetime is how long a toast stays on screen.
	toastLifetime = 4 * time.Second
	// maxToasts caps the toast stack; the oldest is dropped first.
	maxToasts = 3
	// maxTableRows caps the visible rows of each series table.
	maxTableRows = 12
)

// Controller is the part of the orchestrator the dashboard drives.
type Controller interface {
	Init(ctx context.Context) error
	State() engine.ViewState
	Refresh(ctx context.Context) retry.Result[struct{}]
	FetchSummary(ctx context.Context, forceRefresh bool) (engine.DashboardSummary, error)
	FetchSalesSeries(ctx context.Context, period engine.SalesPeriod) (engine.TimeSeries[engine.SalesPoint], error)
	FetchUserGrowthSeries(
		ctx context.Context,
		period engine.GrowthPeriod,
	) (engine.TimeSeries[engine.UserGrowthPoint], error)
	SummaryCacheEntry() (cache.Entry[engine.DashboardSummary], bool)
	SummaryCacheTTL() time.Duration
}

// StateMsg carries a ViewState snapshot published by the orchestrator.
type StateMsg struct {
	State engine.ViewState
}

// ToastMsg carries a notification to show as a toast.
type ToastMsg struct {
	Event notify.Event
}

// initDoneMsg is sent when the initial load completes.
type initDoneMsg struct {
	state engine.ViewState
	err   error
}

// actionDoneMsg is sent when a key-triggered fetch completes.
type actionDoneMsg struct {
	state   engine.ViewState
	refresh bool
}

// toastExpiredMsg removes the toast with the given id.
type toastExpiredMsg struct {
	id int
}

type viewMode int

const (
	modeStarting viewMode = iota
	modeReady
	modeQuitting
)

type toast struct {
	id    int
	event notify.Event
}

// DashboardModel is the Bubble Tea model for the interactive dashboard.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type DashboardModel struct {
	ctx  context.Context
	ctrl Controller
	now  func() time.Time

	mode      viewMode
	state     engine.ViewState
	initErr   error
	precision int

	width  int
	height int

	salesTable  table.Model
	growthTable table.Model
	loading     *LoadingState

	toasts      []toast
	nextToastID int
	refreshing  bool
}

// NewDashboardModel creates the dashboard model. The initial load starts
// from Init.
func NewDashboardModel(ctx context.Context, ctrl Controller, precision int) DashboardModel {
	m := DashboardModel{
		ctx:       ctx,
		ctrl:      ctrl,
		now:       time.Now,
		mode:      modeStarting,
		state:     ctrl.State(),
		precision: precision,
		width:     defaultWidth,
		height:    defaultHeight,
		loading:   NewLoadingState(),
	}
	m.rebuildTables()
	return m
}

// Init starts the spinner and the initial load (Bubble Tea interface).
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), m.initCmd())
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildTables()
		return m, nil
	case StateMsg:
		m.applyState(msg.State)
		return m, nil
	case initDoneMsg:
		m.mode = modeReady
		m.initErr = msg.err
		m.applyState(msg.state)
		return m, nil
	case actionDoneMsg:
		if msg.refresh {
			m.refreshing = false
		}
		m.applyState(msg.state)
		return m, nil
	case ToastMsg:
		return m.pushToast(msg.Event)
	case toastExpiredMsg:
		m.dropToast(msg.id)
		return m, nil
	case spinner.TickMsg:
		return m, m.loading.Update(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.mode = modeQuitting
		return m, tea.Quit
	}
	if m.mode != modeReady {
		return m, nil
	}

	switch msg.String() {
	case "r":
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		return m, m.refreshCmd()
	case "f":
		return m, m.actionCmd(func(ctx context.Context) {
			_, _ = m.ctrl.FetchSummary(ctx, true)
		})
	case "p":
		next := m.currentSalesPeriod().Next()
		return m, m.actionCmd(func(ctx context.Context) {
			_, _ = m.ctrl.FetchSalesSeries(ctx, next)
		})
	case "g":
		next := m.currentGrowthPeriod().Next()
		return m, m.actionCmd(func(ctx context.Context) {
			_, _ = m.ctrl.FetchUserGrowthSeries(ctx, next)
		})
	case "esc":
		m.toasts = nil
	}
	return m, nil
}

// Failures inside these commands reach the user through the notifier, so
// the commands only report the resulting state.

func (m DashboardModel) initCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		err := ctrl.Init(ctx)
		return initDoneMsg{state: ctrl.State(), err: err}
	}
}

func (m DashboardModel) refreshCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctrl.Refresh(ctx)
		return actionDoneMsg{state: ctrl.State(), refresh: true}
	}
}

func (m DashboardModel) actionCmd(run func(context.Context)) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		run(ctx)
		return actionDoneMsg{state: ctrl.State()}
	}
}

// applyState installs s unless a newer snapshot has already been applied.
func (m *DashboardModel) applyState(s engine.ViewState) {
	if s.Revision < m.state.Revision {
		return
	}
	m.state = s
	m.rebuildTables()

	if p := s.LoadProgress; m.mode == modeStarting && p.Total > 0 {
		m.loading.SetMessage(fmt.Sprintf("Loading dashboard... %d/%d lines", p.Settled(), p.Total))
	}
}

func (m DashboardModel) pushToast(ev notify.Event) (tea.Model, tea.Cmd) {
	m.nextToastID++
	id := m.nextToastID
	m.toasts = append(m.toasts, toast{id: id, event: ev})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return m, tea.Tick(toastLifetime, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *DashboardModel) dropToast(id int) {
	kept := make([]toast, 0, len(m.toasts))
	for _, t := range m.toasts {
		if t.id != id {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

func (m DashboardModel) currentSalesPeriod() engine.SalesPeriod {
	if m.state.SalesPeriod.Valid() {
		return m.state.SalesPeriod
	}
	return engine.SalesMonth
}

func (m DashboardModel) currentGrowthPeriod() engine.GrowthPeriod {
	if m.state.GrowthPeriod.Valid() {
		return m.state.GrowthPeriod
	}
	return engine.GrowthMonth
}

// State returns the snapshot the model is currently displaying.
func (m DashboardModel) State() engine.ViewState {
	return m.state
}

// Toasts returns the events of the visible toasts, oldest first.
func (m DashboardModel) Toasts() []notify.Event {
	out := make([]notify.Event, len(m.toasts))
	for i, t := range m.toasts {
		out[i] = t.event
	}
	return out
}

func (m *DashboardModel) rebuildTables() {
	// three columns per half-width panel, minus border and cell padding
	colWidth := max((m.width/2-borderPadding*3)/3-2, 6) //nolint:mnd // layout arithmetic

	m.salesTable = newSeriesTable(
		[]table.Column{
			{Title: "Date", Width: colWidth},
			{Title: "Revenue", Width: colWidth},
			{Title: "Orders", Width: colWidth},
		},
		salesRows(m.state.SalesSeries, m.precision),
	)
	m.growthTable = newSeriesTable(
		[]table.Column{
			{Title: "Date", Width: colWidth},
			{Title: "New", Width: colWidth},
			{Title: "Total", Width: colWidth},
		},
		growthRows(m.state.UserGrowthSeries),
	)
}

func newSeriesTable(cols []table.Column, rows []table.Row) table.Model {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(ColorPrimary).Bold(true)
	styles.Selected = styles.Cell

	return table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(min(len(rows), maxTableRows)+1),
		table.WithFocused(false),
		table.WithStyles(styles),
	)
}

func salesRows(series engine.TimeSeries[engine.SalesPoint], precision int) []table.Row {
	rows := make([]table.Row, 0, len(series))
	for _, p := range series {
		rows = append(rows, table.Row{
			p.Date,
			engine.FormatCurrency(p.Revenue, precision),
			engine.FormatCount(p.Orders),
		})
	}
	return rows
}

func growthRows(series engine.TimeSeries[engine.UserGrowthPoint]) []table.Row {
	rows := make([]table.Row, 0, len(series))
	for _, p := range series {
		rows = append(rows, table.Row{
			p.Date,
			engine.FormatCount(p.NewUsers),
			engine.FormatCount(p.TotalUsers),
		})
	}
	return rows
}
