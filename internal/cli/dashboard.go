package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/adminboard/internal/config"
	"github.com/rshade/adminboard/internal/engine"
	"github.com/rshade/adminboard/internal/engine/batch"
	"github.com/rshade/adminboard/internal/engine/notify"
	"github.com/rshade/adminboard/internal/logging"
	"github.com/rshade/adminboard/internal/tui"
)

// dashboardParams holds the parameters for the dashboard command.
type dashboardParams struct {
	plain        bool
	output       string
	salesPeriod  string
	growthPeriod string
}

// isInteractiveOutput reports whether stdout can host the TUI.
//
//nolint:gochecknoglobals // Test seam for TTY detection.
var isInteractiveOutput = tui.IsTTY

// NewDashboardCmd creates the "dashboard" command that loads every
// dashboard line and shows them interactively or as a one-shot render.
func NewDashboardCmd() *cobra.Command {
	var params dashboardParams

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Live admin dashboard",
		Long: `Load the summary, sales series, user growth series and category
distribution from the admin API and display them.

On a terminal the dashboard is interactive: r refreshes everything with
retries, f forces a fresh summary, p and g cycle the series periods.
With --plain, --output json or a non-terminal stdout the dashboard is
printed once.`,
		Example: `  # Interactive dashboard
  adminboard dashboard

  # Plain text with weekly sales
  adminboard dashboard --plain --sales-period week

  # JSON for scripts
  adminboard dashboard --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeDashboard(cmd, params)
		},
	}

	cmd.Flags().BoolVar(&params.plain, "plain", false, "force non-interactive plain text output")
	cmd.Flags().StringVar(&params.output, "output", "", "output format (table, json); default from config")
	cmd.Flags().StringVar(&params.salesPeriod, "sales-period", "", "sales series period (day, week, month, year)")
	cmd.Flags().StringVar(&params.growthPeriod, "growth-period", "", "user growth period (week, month, year)")

	return cmd
}

// executeDashboard is the main execution pipeline for the dashboard command.
func executeDashboard(cmd *cobra.Command, params dashboardParams) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	periods, err := resolvePeriods(params.salesPeriod, params.growthPeriod)
	if err != nil {
		return err
	}
	output, err := resolveOutput(params.output)
	if err != nil {
		return err
	}

	if !params.plain && output == config.FormatTable && isInteractiveOutput() {
		return runInteractiveDashboard(ctx, periods)
	}
	return runPlainDashboard(ctx, cmd, output, periods)
}

// resolvePeriods turns the period flags into an orchestrator option. Empty
// flags fall back to the configured periods.
func resolvePeriods(sales, growth string) (engine.Option, error) {
	cfg := config.GetGlobalConfig()
	sp, gp := cfg.SalesPeriod(), cfg.GrowthPeriod()

	if sales != "" {
		p, err := engine.ParseSalesPeriod(sales)
		if err != nil {
			return nil, err
		}
		sp = p
	}
	if growth != "" {
		p, err := engine.ParseGrowthPeriod(growth)
		if err != nil {
			return nil, err
		}
		gp = p
	}
	return engine.WithPeriods(sp, gp), nil
}

// runPlainDashboard loads the dashboard once and prints it.
func runPlainDashboard(ctx context.Context, cmd *cobra.Command, output string, periods engine.Option) error {
	log := logging.FromContext(ctx)

	sess, err := newSession(ctx, periods,
		engine.WithNotifier(stderrNotifier(cmd.ErrOrStderr())),
		engine.WithProgressHook(func(p batch.ProgressSnapshot) {
			log.Debug().Ctx(ctx).
				Str("component", "cli").
				Int("settled", p.Settled()).
				Int("total", p.Total).
				Float64("percent", p.PercentComplete).
				Dur("elapsed", p.ElapsedTime).
				Bool("complete", p.IsComplete()).
				Msg("dashboard load progress")
		}),
	)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	initErr := sess.orch.Init(ctx)
	state := sess.orch.State()

	if allLinesFailed(state) {
		return fmt.Errorf("loading dashboard: %w", initErr)
	}
	if initErr != nil {
		log.Warn().Ctx(ctx).Err(initErr).Msg("dashboard loaded partially")
	}

	if output == config.FormatJSON {
		return engine.RenderJSON(cmd.OutOrStdout(), engine.NewDashboardJSON(state))
	}
	return engine.RenderDashboard(cmd.OutOrStdout(), state, renderOptions())
}

func allLinesFailed(state engine.ViewState) bool {
	for _, l := range engine.DataLines() {
		if state.Line(l).Status != engine.StatusFailed {
			return false
		}
	}
	return true
}

// runInteractiveDashboard launches the TUI. Orchestrator updates and
// notifications are bridged into the program as messages.
func runInteractiveDashboard(ctx context.Context, periods engine.Option) error {
	log := logging.FromContext(ctx)

	program := notify.NewRef[*tea.Program](nil)
	send := func(msg tea.Msg) {
		if p := program.Load(); p != nil {
			p.Send(msg)
		}
	}

	sess, err := newSession(ctx, periods, engine.WithUpdateHook(func(s engine.ViewState) {
		send(tui.StateMsg{State: s})
	}))
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	model := tui.NewDashboardModel(ctx, sess.orch, config.GetOutputPrecision())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	program.Store(p)

	sess.orch.Notifier().Set(func(ev notify.Event) {
		log.Debug().Ctx(ctx).
			Str("severity", ev.Severity.String()).
			Str("title", ev.Title).
			Msg("dashboard notification")
		send(tui.ToastMsg{Event: ev})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
