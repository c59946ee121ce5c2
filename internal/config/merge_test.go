package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/adminboard/internal/config"
)

func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestShallowMergeYAML_ReplacesWholeSection(t *testing.T) {
	target := config.Default()
	target.Dashboard.RefreshRetries = 5

	path := writeOverlay(t, `
dashboard:
  sales_period: year
  cache_ttl: 30m
`)
	require.NoError(t, config.ShallowMergeYAML(target, path))

	assert.Equal(t, "year", target.Dashboard.SalesPeriod)
	assert.Equal(t, 30*time.Minute, target.Dashboard.CacheTTL)
	// section replaced, so fields absent from the overlay are zeroed
	assert.Zero(t, target.Dashboard.RefreshRetries)
	assert.Empty(t, target.Dashboard.GrowthPeriod)
}

func TestShallowMergeYAML_LeavesOtherSections(t *testing.T) {
	target := config.Default()
	target.API.Token = "keep"

	path := writeOverlay(t, "output:\n  default_format: json\n  precision: 1\n")
	require.NoError(t, config.ShallowMergeYAML(target, path))

	assert.Equal(t, "json", target.Output.DefaultFormat)
	assert.Equal(t, 1, target.Output.Precision)
	assert.Equal(t, "keep", target.API.Token)
}

func TestShallowMergeYAML_IgnoresUnknownKeys(t *testing.T) {
	target := config.Default()
	path := writeOverlay(t, "billing:\n  plan: {}\nlogging:\n  level: warn\n  format: json\n")
	require.NoError(t, config.ShallowMergeYAML(target, path))
	assert.Equal(t, "warn", target.Logging.Level)
}

func TestShallowMergeYAML_EmptyFile(t *testing.T) {
	target := config.Default()
	before := *target
	path := writeOverlay(t, "# nothing here\n")
	require.NoError(t, config.ShallowMergeYAML(target, path))
	assert.Equal(t, before.API, target.API)
	assert.Equal(t, before.Dashboard, target.Dashboard)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	require.Error(t, config.ShallowMergeYAML(nil, "x"))
	require.Error(t, config.ShallowMergeYAML(config.Default(), filepath.Join(t.TempDir(), "missing.yaml")))
	require.Error(t, config.ShallowMergeYAML(config.Default(), writeOverlay(t, "api: [")))
	require.Error(t, config.ShallowMergeYAML(config.Default(), writeOverlay(t, "api:\n  timeout: forever\n")))
}
