package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/adminboard/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration: the config file, environment
overrides and any --config overlay.

This includes:
- YAML syntax of the config file
- API base URL and server version constraint
- Dashboard periods, cache TTL (1m..1h) and refresh settings
- Logging level and format
- Telemetry endpoint when telemetry is enabled`,
		Example: `  # Validate current configuration
  adminboard config validate

  # Validate and show detailed information
  adminboard config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.LoadError(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "\nConfig file:     %s\n", cfg.Path())
	_, _ = fmt.Fprintf(w, "API:             %s (timeout %s)\n", cfg.API.BaseURL, cfg.API.Timeout)
	_, _ = fmt.Fprintf(w, "Periods:         sales=%s growth=%s\n", cfg.SalesPeriod(), cfg.GrowthPeriod())
	_, _ = fmt.Fprintf(w, "Cache TTL:       %s\n", cfg.Dashboard.CacheTTL)
	_, _ = fmt.Fprintf(w, "Refresh:         timeout %s, %d retries\n",
		cfg.Dashboard.RefreshTimeout, cfg.Dashboard.RefreshRetries)
	_, _ = fmt.Fprintf(w, "Logging:         %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
	if cfg.Telemetry.Enabled {
		_, _ = fmt.Fprintf(w, "Telemetry:       %s\n", cfg.Telemetry.Endpoint)
	} else {
		_, _ = fmt.Fprintln(w, "Telemetry:       disabled")
	}
}
