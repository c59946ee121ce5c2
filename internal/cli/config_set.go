package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/adminboard/internal/config"
	"github.com/rshade/adminboard/internal/engine"
)

// NewConfigSetCmd creates the config set command.
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Sets one dotted key in the config file. The result is validated before it is saved.",
		Example: `  adminboard config set api.base_url https://admin.example.com
  adminboard config set dashboard.cache_ttl 10m
  adminboard config set output.default_format json`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEditableConfig()
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			audit := newAuditContext(cmd.Context(), "config set", map[string]string{"key": args[0]})
			audit.logSuccess(cmd.Context())

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
			return nil
		},
	}
}

// NewConfigGetCmd creates the config get command.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

// NewConfigListCmd creates the config list command.
func NewConfigListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long:  "Lists the effective configuration. The API token is masked.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := resolveOutput(output)
			if err != nil {
				return err
			}
			values := config.GetGlobalConfig().List()
			if format == config.FormatJSON {
				return engine.RenderJSON(cmd.OutOrStdout(), values)
			}
			for _, k := range config.Keys() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, values[k])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "output format (table, json); default from config")
	return cmd
}

// loadEditableConfig reads the config file without environment overrides,
// starting from defaults when the file does not exist yet.
func loadEditableConfig() (*config.Config, error) {
	path, err := config.DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
		cfg.SetPath(path)
		return cfg, nil
	}
	return cfg, err
}
