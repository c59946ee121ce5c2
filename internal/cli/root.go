// Package cli implements the adminboard command line.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/adminboard/internal/config"
	"github.com/rshade/adminboard/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the adminboard CLI.
// It wires up config overlays, logging, tracing, audit logging and the
// subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "adminboard",
		Short:         "Admin dashboard for the marketplace API",
		Long:          "adminboard: live dashboard and verification workflow for the marketplace admin API",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyConfigOverlay(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "YAML file merged over the loaded configuration")
	cmd.PersistentFlags().String("api-url", "", "admin API base URL (overrides config)")
	cmd.AddCommand(
		NewDashboardCmd(),
		NewSummaryCmd(),
		NewSeriesCmd(),
		NewCategoriesCmd(),
		newVerificationsCmd(),
		newConfigCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Open the interactive dashboard
  adminboard dashboard

  # Print the dashboard once as JSON
  adminboard dashboard --plain --output json

  # Show the summary, bypassing the cache
  adminboard summary --force

  # Weekly sales series
  adminboard series sales --period week

  # Review pending supplier verifications
  adminboard verifications list --status pending
  adminboard verifications approve 42

  # Point at another API
  adminboard config set api.base_url https://admin.example.com`

// applyConfigOverlay merges --config over the global configuration and
// applies --api-url.
func applyConfigOverlay(cmd *cobra.Command) error {
	cfg := config.GetGlobalConfig()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := config.ShallowMergeYAML(cfg, path); err != nil {
			return fmt.Errorf("loading --config overlay: %w", err)
		}
	}
	if url, _ := cmd.Flags().GetString("api-url"); url != "" {
		cfg.API.BaseURL = url
	}
	return nil
}

// newVerificationsCmd creates the verifications command group.
func newVerificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "verifications",
		Aliases: []string{"verification", "verify"},
		Short:   "Supplier verification workflow",
	}
	cmd.AddCommand(NewVerificationsListCmd(), NewVerificationsApproveCmd(), NewVerificationsRejectCmd())
	return cmd
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}
