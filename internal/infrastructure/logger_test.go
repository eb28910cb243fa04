package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadlens/internal/config"
)

func TestInitializeLogger_File(t *testing.T) {
	t.Cleanup(func() { CloseLogger() })

	logFile := filepath.Join(t.TempDir(), "logs", "leadlens.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	assert.Same(t, logger, GetLogger())

	logger.Info("workbook loaded", "rows", 4)
	require.NoError(t, CloseLogger())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &entry))
	assert.Equal(t, "workbook loaded", entry["msg"])
	assert.Equal(t, float64(4), entry["rows"])
}

func TestInitializeLogger_OnlyOnce(t *testing.T) {
	t.Cleanup(func() { CloseLogger() })

	first, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "error", Output: "console"})
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.NoError(t, CloseLogger())
	third, err := InitializeLogger(config.LoggingConfig{Level: "error", Output: "console"})
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestInitializeLogger_UnwritableFile(t *testing.T) {
	t.Cleanup(func() { CloseLogger() })

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := InitializeLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(blocker, "leadlens.log")})
	assert.Error(t, err)
}

func TestNewLogger_InjectsContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, config.LoggingConfig{Level: "debug"})

	ctx, runID := NewRunContext(context.Background())
	logger.With("component", "analysis_service").InfoContext(ctx, "run started")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, runID, entry["run_id"])
	assert.Equal(t, runID, entry["trace_id"])
	assert.Equal(t, "analysis_service", entry["component"])
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, config.LoggingConfig{Level: "warn", Format: "text"})

	logger.Info("hidden")
	logger.Warn("column missing", "column", "Role")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `msg="column missing"`)
	assert.Contains(t, out, "column=Role")
}

func TestNewRunContext_KeepsTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "req-1")
	ctx, runID := NewRunContext(ctx)

	assert.Equal(t, "req-1", GetTraceID(ctx))
	assert.Equal(t, runID, GetRunID(ctx))
	assert.Empty(t, GetRunID(context.Background()))
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, parseLogLevel(in))
		})
	}
}
