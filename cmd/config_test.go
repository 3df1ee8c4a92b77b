package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{name: "debug", value: "debug", want: slog.LevelDebug},
		{name: "info", value: "info", want: slog.LevelInfo},
		{name: "warn", value: "warn", want: slog.LevelWarn},
		{name: "warning alias", value: "warning", want: slog.LevelWarn},
		{name: "error", value: "error", want: slog.LevelError},
		{name: "mixed case", value: " Debug ", want: slog.LevelDebug},
		{name: "numeric", value: "-4", want: slog.LevelDebug},
		{name: "empty falls back", value: "", want: slog.LevelWarn},
		{name: "garbage falls back", value: "loud", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rift-test.log")

	configureLogger(logPath, true)
	require.NotNil(t, globalLogger)

	globalLogger.Debug("logger check", "path", logPath)

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "logger check")
}
