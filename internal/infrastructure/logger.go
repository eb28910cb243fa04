package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"leadlens/internal/config"
)

// The process-wide logger of the server. CLI commands that log to the
// console build their own with NewLogger instead.
var (
	globalMu      sync.Mutex
	globalLogger  *slog.Logger
	globalLogFile *os.File
)

// InitializeLogger builds the process logger from cfg on the first call and
// installs it as slog's default. Later calls return the same logger.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger != nil {
		return globalLogger, nil
	}

	w, file, err := logOutput(cfg)
	if err != nil {
		return nil, err
	}
	globalLogFile = file
	globalLogger = NewLogger(w, cfg)
	slog.SetDefault(globalLogger)
	return globalLogger, nil
}

// GetLogger returns the process logger, or slog's default before
// InitializeLogger ran
func GetLogger() *slog.Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// CloseLogger closes the log file, if any, and forgets the process logger so
// the next InitializeLogger starts over
func CloseLogger() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalLogger = nil
	if globalLogFile == nil {
		return nil
	}
	err := globalLogFile.Close()
	globalLogFile = nil
	return err
}

// NewLogger builds a logger writing to w in cfg's format and level. Records
// carry the trace_id and run_id found in their context.
func NewLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLogLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		opts.AddSource = false
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(contextHandler{handler})
}

// logOutput resolves cfg.Output. Console means stderr so stdout stays free
// for report tables.
func logOutput(cfg config.LoggingConfig) (io.Writer, *os.File, error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return os.Stderr, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
	}

	if output == "both" {
		return io.MultiWriter(os.Stderr, file), file, nil
	}
	return file, file, nil
}

// contextHandler copies the correlation IDs of the context onto each record
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	if id := GetRunID(ctx); id != "" {
		r.AddAttrs(slog.String("run_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

// parseLogLevel maps a configured level name onto slog. Unknown names are info.
func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
