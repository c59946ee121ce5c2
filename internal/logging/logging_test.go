package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithPath_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "adminboard.log")

	result := NewLoggerWithPath(Config{Level: "debug", Format: FormatJSON, Output: OutputFile, File: path})
	t.Cleanup(func() { _ = result.Close() })

	assert.True(t, result.UsingFile)
	assert.False(t, result.FallbackUsed)
	assert.Equal(t, path, result.FilePath)
	assert.Equal(t, zerolog.DebugLevel, result.Logger.GetLevel())

	result.Logger.Info().Msg("hello")
	require.NoError(t, result.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestNewLoggerWithPath_FallbackOnEmptyFile(t *testing.T) {
	result := NewLoggerWithPath(Config{Level: "info", Output: OutputFile})

	assert.False(t, result.UsingFile)
	assert.True(t, result.FallbackUsed)
	assert.NotEmpty(t, result.FallbackReason)
	assert.NoError(t, result.Close())
}

func TestNewLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	logger := NewLogger(Config{Level: "shouting"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logger.WithContext(context.Background())

	FromContext(ctx).Info().Msg("from ctx")
	assert.Contains(t, buf.String(), "from ctx")

	// No logger stored: must not panic and must not write anywhere.
	FromContext(context.Background()).Info().Msg("dropped")
	FromContext(nil).Info().Msg("dropped") //nolint:staticcheck // nil context is tolerated.
}

func TestTraceIDHook(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(TraceIDHook{})
	ctx := ContextWithTraceID(context.Background(), "01TRACE")

	logger.Info().Ctx(ctx).Msg("traced")

	var fields map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	assert.Equal(t, "01TRACE", fields["trace_id"])
}

func TestGetOrGenerateTraceID(t *testing.T) {
	generated := GetOrGenerateTraceID(context.Background())
	assert.Len(t, generated, 26)

	ctx := ContextWithTraceID(context.Background(), generated)
	assert.Equal(t, generated, GetOrGenerateTraceID(ctx))
	assert.Equal(t, generated, TraceIDFromContext(ctx))
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := ComponentLogger(zerolog.New(&buf), "engine")
	logger.Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"engine"`)
}

func TestAuditLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	audit := NewAuditLogger(AuditLoggerConfig{Enabled: true, File: path})
	ctx := ContextWithAuditLogger(context.Background(), audit)

	entry := NewAuditEntry("verifications approve", "01TRACE").
		WithParameters(map[string]string{"id": "v-1"}).
		WithSuccess().
		WithDuration(time.Now())
	AuditLoggerFromContext(ctx).Log(ctx, *entry)
	require.NoError(t, audit.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"command":"verifications approve"`)
	assert.Contains(t, string(data), `"success":true`)
}

func TestAuditLoggerFromContext_DefaultsToNoop(t *testing.T) {
	audit := AuditLoggerFromContext(context.Background())
	audit.Log(context.Background(), AuditEntry{Command: "x"})
	assert.NoError(t, audit.Close())
}
