// Package observability provides the engine's diagnostic logger and metrics.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string
	Format string
	// Output is one of stderr, stdout or discard. Defaults to stderr.
	Output string
	// Writer, when set, takes precedence over Output.
	Writer io.Writer
}

// NewLogger creates a new structured logger based on configuration.
func NewLogger(config LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(config.Level),
	}

	output := config.Writer
	if output == nil {
		output = outputFor(config.Output)
	}

	var handler slog.Handler
	switch strings.ToLower(config.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}

// DefaultLogger is the logger used by the engine when none is injected.
func DefaultLogger() *slog.Logger {
	return NewLogger(LoggingConfig{Level: "info", Format: "text", Output: "stderr"})
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func outputFor(name string) io.Writer {
	switch strings.ToLower(name) {
	case "stdout":
		return os.Stdout
	case "discard":
		return io.Discard
	default:
		return os.Stderr
	}
}
