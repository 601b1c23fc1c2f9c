// Package logging provides structured logging configuration and utilities.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logging configuration.
type Config struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
	// Output defaults to stdout.
	Output io.Writer `yaml:"-"`
}

// NewLogger builds a logger from cfg: JSON lines in production, text when
// Pretty is set. Unknown levels fall back to info.
func NewLogger(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Pretty {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return slog.New(handler)
}

// SetupLogger configures the process-wide default logger and returns it.
func SetupLogger(cfg Config) *slog.Logger {
	logger := NewLogger(cfg)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
