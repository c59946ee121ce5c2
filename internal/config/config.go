// Package config loads, validates and persists the adminboard configuration
// file (~/.adminboard/config.yaml) and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/adminboard/internal/engine"
	"github.com/rshade/adminboard/internal/engine/cache"
)

// Environment variables recognised by the configuration layer.
const (
	EnvHome         = "ADMINBOARD_HOME"
	EnvConfigFile   = "ADMINBOARD_CONFIG"
	EnvAPIURL       = "ADMINBOARD_API_URL"
	EnvAPIToken     = "ADMINBOARD_API_TOKEN"
	EnvLogLevel     = "ADMINBOARD_LOG_LEVEL"
	EnvLogFormat    = "ADMINBOARD_LOG_FORMAT"
	EnvOTelEndpoint = "ADMINBOARD_OTEL_ENDPOINT"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Validation limits.
const (
	maxRefreshRetries = 10
	maxPrecision      = 6
	defaultPrecision  = 2
	defaultAPITimeout = 30 * time.Second
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete adminboard configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Output    OutputConfig    `yaml:"output"`

	configPath string
	loadErr    error
}

// APIConfig describes the admin API connection.
type APIConfig struct {
	BaseURL          string        `yaml:"base_url"`
	Token            string        `yaml:"token,omitempty"`
	Timeout          time.Duration `yaml:"timeout"`
	MinServerVersion string        `yaml:"min_server_version,omitempty"`
}

// DashboardConfig controls the dashboard data layer.
type DashboardConfig struct {
	SalesPeriod    string        `yaml:"sales_period"`
	GrowthPeriod   string        `yaml:"growth_period"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout"`
	RefreshRetries int           `yaml:"refresh_retries"`
}

// TelemetryConfig controls the OTLP metrics exporter.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure bool   `yaml:"insecure"`
}

// OutputConfig controls plain output.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
}

// Default returns a configuration with every default applied and no file
// or environment input.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: defaultAPITimeout,
		},
		Dashboard: DashboardConfig{
			SalesPeriod:    string(engine.SalesMonth),
			GrowthPeriod:   string(engine.GrowthMonth),
			CacheTTL:       cache.DefaultTTL,
			RefreshTimeout: engine.DefaultRefreshTimeout,
			RefreshRetries: engine.DefaultRefreshRetries,
		},
		Logging: LoggingConfig{
			Level:  zerolog.LevelInfoValue,
			Format: "console",
		},
		Output: OutputConfig{
			DefaultFormat: FormatTable,
			Precision:     defaultPrecision,
		},
	}
}

// New loads the configuration from the default path and applies environment
// overrides. A missing file is not an error. A broken file leaves defaults
// in place and is reported by LoadError.
func New() *Config {
	path, pathErr := DefaultConfigPath()
	cfg := Default()
	if pathErr != nil {
		cfg.loadErr = pathErr
	} else {
		cfg.configPath = path
		if err := cfg.loadFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			cfg.loadErr = err
		}
	}
	cfg.ApplyEnv()
	return cfg
}

// Load reads the file at path over the defaults and applies environment
// overrides. Unlike New, a missing file is an error.
func Load(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ReadFile reads the file at path over the defaults without environment
// overrides. Commands that edit the file use it so env values are never
// persisted.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	cfg.configPath = path
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto c.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvOTelEndpoint); v != "" {
		c.Telemetry.Endpoint = v
		c.Telemetry.Enabled = true
	}
	if os.Getenv(cache.EnvTTL) != "" {
		c.Dashboard.CacheTTL = cache.GetTTLFromEnv()
	}
}

// Path returns the file this configuration was loaded from or will be
// saved to.
func (c *Config) Path() string {
	return c.configPath
}

// SetPath changes the file used by Save.
func (c *Config) SetPath(path string) {
	c.configPath = path
}

// LoadError returns the error encountered reading the config file, if any.
func (c *Config) LoadError() error {
	return c.loadErr
}

// Save writes the configuration to its path with owner-only permissions.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path is not set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config file %s: %w", c.configPath, err)
	}
	return nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.API.BaseURL == "" {
		add("api.base_url is required")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("api.base_url %q must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		add("api.timeout must not be negative")
	}
	if c.API.MinServerVersion != "" {
		if _, err := semver.NewConstraint(c.API.MinServerVersion); err != nil {
			add("api.min_server_version %q is not a valid constraint: %v", c.API.MinServerVersion, err)
		}
	}

	if _, err := engine.ParseSalesPeriod(c.Dashboard.SalesPeriod); err != nil {
		add("dashboard.sales_period: %v", err)
	}
	if _, err := engine.ParseGrowthPeriod(c.Dashboard.GrowthPeriod); err != nil {
		add("dashboard.growth_period: %v", err)
	}
	if err := cache.ValidateTTL(c.Dashboard.CacheTTL); err != nil {
		add("dashboard.cache_ttl: %v", err)
	}
	if c.Dashboard.RefreshTimeout <= 0 {
		add("dashboard.refresh_timeout must be positive")
	}
	if c.Dashboard.RefreshRetries < 0 || c.Dashboard.RefreshRetries > maxRefreshRetries {
		add("dashboard.refresh_retries must be between 0 and %d", maxRefreshRetries)
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		add("logging.level %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		add("logging.format must be console or json")
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		add("telemetry.endpoint is required when telemetry is enabled")
	}

	if c.Output.DefaultFormat != FormatTable && c.Output.DefaultFormat != FormatJSON {
		add("output.default_format must be table or json")
	}
	if c.Output.Precision < 0 || c.Output.Precision > maxPrecision {
		add("output.precision must be between 0 and %d", maxPrecision)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(problems, "\n  - "))
	}
	return nil
}

// SalesPeriod returns the configured sales period, or the default when invalid.
func (c *Config) SalesPeriod() engine.SalesPeriod {
	if p, err := engine.ParseSalesPeriod(c.Dashboard.SalesPeriod); err == nil {
		return p
	}
	return engine.SalesMonth
}

// GrowthPeriod returns the configured growth period, or the default when invalid.
func (c *Config) GrowthPeriod() engine.GrowthPeriod {
	if p, err := engine.ParseGrowthPeriod(c.Dashboard.GrowthPeriod); err == nil {
		return p
	}
	return engine.GrowthMonth
}
