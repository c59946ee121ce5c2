package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/adminboard/internal/config"
	"github.com/rshade/adminboard/internal/engine"
)

// Series kinds accepted by the series command.
const (
	seriesSales  = "sales"
	seriesGrowth = "growth"
)

// NewSummaryCmd creates the "summary" command.
func NewSummaryCmd() *cobra.Command {
	var (
		force  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard summary statistics",
		Example: `  adminboard summary
  adminboard summary --force --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := resolveOutput(output)
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, sess *session) error {
				s, err := sess.orch.FetchSummary(ctx, force)
				if err != nil {
					return err
				}
				if format == config.FormatJSON {
					return engine.RenderJSON(cmd.OutOrStdout(), s)
				}
				return engine.RenderSummary(cmd.OutOrStdout(), s, renderOptions())
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the summary cache")
	cmd.Flags().StringVar(&output, "output", "", "output format (table, json); default from config")

	return cmd
}

// NewSeriesCmd creates the "series" command for the sales and user growth
// time series.
func NewSeriesCmd() *cobra.Command {
	var (
		period string
		output string
	)

	cmd := &cobra.Command{
		Use:       "series (sales|growth)",
		Short:     "Show a dashboard time series",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{seriesSales, seriesGrowth},
		Example: `  adminboard series sales --period week
  adminboard series growth --period year --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutput(output)
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, sess *session) error {
				if args[0] == seriesSales {
					return runSalesSeries(ctx, cmd, sess, period, format)
				}
				return runGrowthSeries(ctx, cmd, sess, period, format)
			})
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "series period; default from config")
	cmd.Flags().StringVar(&output, "output", "", "output format (table, json); default from config")

	return cmd
}

func runSalesSeries(ctx context.Context, cmd *cobra.Command, sess *session, period, format string) error {
	p := sess.cfg.SalesPeriod()
	if period != "" {
		parsed, err := engine.ParseSalesPeriod(period)
		if err != nil {
			return err
		}
		p = parsed
	}
	series, err := sess.orch.FetchSalesSeries(ctx, p)
	if err != nil {
		return err
	}
	if format == config.FormatJSON {
		return engine.RenderJSON(cmd.OutOrStdout(), series)
	}
	return engine.RenderSalesSeries(cmd.OutOrStdout(), series, renderOptions())
}

func runGrowthSeries(ctx context.Context, cmd *cobra.Command, sess *session, period, format string) error {
	p := sess.cfg.GrowthPeriod()
	if period != "" {
		parsed, err := engine.ParseGrowthPeriod(period)
		if err != nil {
			return err
		}
		p = parsed
	}
	series, err := sess.orch.FetchUserGrowthSeries(ctx, p)
	if err != nil {
		return err
	}
	if format == config.FormatJSON {
		return engine.RenderJSON(cmd.OutOrStdout(), series)
	}
	return engine.RenderUserGrowthSeries(cmd.OutOrStdout(), series)
}

// NewCategoriesCmd creates the "categories" command.
func NewCategoriesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show the product category distribution",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := resolveOutput(output)
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, sess *session) error {
				dist, err := sess.orch.FetchCategoryDistribution(ctx)
				if err != nil {
					return err
				}
				if format == config.FormatJSON {
					return engine.RenderJSON(cmd.OutOrStdout(), dist)
				}
				return engine.RenderCategories(cmd.OutOrStdout(), dist)
			})
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "output format (table, json); default from config")

	return cmd
}

// withSession runs fn with a fresh session. Failures come back as the
// command error, so no notifier is installed.
func withSession(cmd *cobra.Command, fn func(context.Context, *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sess, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	if err := fn(ctx, sess); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return nil
}
