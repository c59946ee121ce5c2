package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownKey is returned by Get and Set for unrecognised keys.
var ErrUnknownKey = fmt.Errorf("unknown config key")

// maskedValue replaces secrets in List output.
const maskedValue = "********"

type field struct {
	get    func(*Config) string
	set    func(*Config, string) error
	secret bool
}

func stringField(ptr func(*Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error { *ptr(c) = v; return nil },
	}
}

func durationField(ptr func(*Config) *time.Duration) field {
	return field{
		get: func(c *Config) string { return ptr(c).String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("parsing duration %q: %w", v, err)
			}
			*ptr(c) = d
			return nil
		},
	}
}

func intField(ptr func(*Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parsing integer %q: %w", v, err)
			}
			*ptr(c) = n
			return nil
		},
	}
}

func boolField(ptr func(*Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("parsing boolean %q: %w", v, err)
			}
			*ptr(c) = b
			return nil
		},
	}
}

// fields maps dotted keys onto Config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var fields = map[string]field{
	"api.base_url":              stringField(func(c *Config) *string { return &c.API.BaseURL }),
	"api.token":                 secret(stringField(func(c *Config) *string { return &c.API.Token })),
	"api.timeout":               durationField(func(c *Config) *time.Duration { return &c.API.Timeout }),
	"api.min_server_version":    stringField(func(c *Config) *string { return &c.API.MinServerVersion }),
	"dashboard.sales_period":    stringField(func(c *Config) *string { return &c.Dashboard.SalesPeriod }),
	"dashboard.growth_period":   stringField(func(c *Config) *string { return &c.Dashboard.GrowthPeriod }),
	"dashboard.cache_ttl":       durationField(func(c *Config) *time.Duration { return &c.Dashboard.CacheTTL }),
	"dashboard.refresh_timeout": durationField(func(c *Config) *time.Duration { return &c.Dashboard.RefreshTimeout }),
	"dashboard.refresh_retries": intField(func(c *Config) *int { return &c.Dashboard.RefreshRetries }),
	"logging.level":             stringField(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":            stringField(func(c *Config) *string { return &c.Logging.Format }),
	"logging.file":              stringField(func(c *Config) *string { return &c.Logging.File }),
	"logging.audit.enabled":     boolField(func(c *Config) *bool { return &c.Logging.Audit.Enabled }),
	"logging.audit.file":        stringField(func(c *Config) *string { return &c.Logging.Audit.File }),
	"telemetry.enabled":         boolField(func(c *Config) *bool { return &c.Telemetry.Enabled }),
	"telemetry.endpoint":        stringField(func(c *Config) *string { return &c.Telemetry.Endpoint }),
	"telemetry.insecure":        boolField(func(c *Config) *bool { return &c.Telemetry.Insecure }),
	"output.default_format":     stringField(func(c *Config) *string { return &c.Output.DefaultFormat }),
	"output.precision":          intField(func(c *Config) *int { return &c.Output.Precision }),
}

func secret(f field) field {
	f.secret = true
	return f
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a dotted key such as "dashboard.cache_ttl".
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(c), nil
}

// Set assigns a dotted key from its string form. The result is not
// validated; call Validate before saving.
func (c *Config) Set(key, value string) error {
	f, ok := fields[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := f.set(c, value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// List returns every key and value. Secrets are masked unless empty.
func (c *Config) List() map[string]string {
	out := make(map[string]string, len(fields))
	for k, f := range fields {
		v := f.get(c)
		if f.secret && v != "" {
			v = maskedValue
		}
		out[k] = v
	}
	return out
}
