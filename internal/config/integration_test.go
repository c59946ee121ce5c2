package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)
	t.Setenv(EnvConfigFile, "")
	for _, k := range []string{EnvAPIURL, EnvAPIToken, EnvLogLevel, EnvLogFormat, EnvOTelEndpoint} {
		t.Setenv(k, "")
	}
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)
	return dir
}

func TestGlobalConfig(t *testing.T) {
	isolate(t)

	first := GetGlobalConfig()
	require.NotNil(t, first)
	assert.Same(t, first, GetGlobalConfig())

	replacement := Default()
	replacement.Output.Precision = 4
	SetGlobalConfig(replacement)
	assert.Same(t, replacement, GetGlobalConfig())
}

func TestConfigGetters(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.Logging.Level = "warn"
	cfg.Logging.File = "/tmp/adminboard.log"
	cfg.Output.DefaultFormat = FormatJSON
	cfg.Output.Precision = 1
	SetGlobalConfig(cfg)

	assert.Equal(t, "warn", GetLogLevel())
	assert.Equal(t, "/tmp/adminboard.log", GetLogFile())
	assert.Equal(t, FormatJSON, GetDefaultOutputFormat())
	assert.Equal(t, 1, GetOutputPrecision())
	assert.Equal(t, "warn", GetLoggingConfig().Level)
}

func TestGetConfigDir(t *testing.T) {
	dir := isolate(t)
	got, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	t.Setenv(EnvHome, "")
	got, err = GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, configDirName, filepath.Base(got))
}

func TestDefaultConfigPath(t *testing.T) {
	dir := isolate(t)
	got, err := DefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), got)

	t.Setenv(EnvConfigFile, "/etc/adminboard.yaml")
	got, err = DefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/adminboard.yaml", got)
}

func TestEnsureConfigDir(t *testing.T) {
	dir := filepath.Join(isolate(t), "sub")
	t.Setenv(EnvHome, dir)
	require.NoError(t, EnsureConfigDir())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureLogDir(t *testing.T) {
	dir := isolate(t)
	cfg := Default()
	cfg.Logging.File = filepath.Join(dir, "logs", "adminboard.log")
	SetGlobalConfig(cfg)

	require.NoError(t, EnsureLogDir())
	_, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)

	cfg.Logging.File = ""
	require.NoError(t, EnsureLogDir())
}

func TestLoggingConfigConversion(t *testing.T) {
	dir := isolate(t)

	lc := LoggingConfig{Level: "debug", Format: "json"}
	out := lc.ToLoggingConfig()
	assert.Equal(t, "stderr", out.Output)
	assert.Equal(t, "debug", out.Level)

	lc.File = "/var/log/adminboard.log"
	out = lc.ToLoggingConfig()
	assert.Equal(t, "file", out.Output)
	assert.Equal(t, "/var/log/adminboard.log", out.File)

	lc.Audit.Enabled = true
	audit := lc.ToAuditConfig()
	assert.True(t, audit.Enabled)
	assert.Equal(t, filepath.Join(dir, "audit.log"), audit.File)
}
