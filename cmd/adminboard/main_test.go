package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/adminboard/internal/cli"
	"github.com/rshade/adminboard/internal/engine"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error returns 0", nil, 0},
		{"generic error", errors.New("boom"), 1},
		{"unconfirmed decision", cli.ErrNotConfirmed, 2},
		{"wrapped unconfirmed decision", fmt.Errorf("approve: %w", cli.ErrNotConfirmed), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestDescribe(t *testing.T) {
	fe := &engine.FetchError{Line: engine.LineSummary, Message: "Failed to load summary", Err: errors.New("503")}
	assert.Equal(t, "Failed to load summary: 503", describe(fmt.Errorf("summary: %w", fe)))
	assert.Equal(t, "plain", describe(errors.New("plain")))
}

func TestRun_Version(t *testing.T) {
	t.Setenv("ADMINBOARD_HOME", t.TempDir())
	var stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"--version"}, &stderr))
	assert.Empty(t, stderr.String())
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Setenv("ADMINBOARD_HOME", t.TempDir())
	var stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"no-such-command"}, &stderr))
	assert.Contains(t, stderr.String(), "Error:")
}
