// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger. A nil Output writes to stderr.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel converts a user-supplied level name, falling back to info.
func ParseLevel(v string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// parseLevel maps a LogLevel onto zerolog, falling back to info.
func parseLevel(level LogLevel) zerolog.Level {
	switch ParseLevel(string(level)) {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: request flow and state transitions
//   - Gateway requests (endpoint, request_id), cache hits and revalidation
//   - Page fetch start/finish, stale responses dropped by the sequence guard
//   - Rejected navigation (page outside range, unsupported page size)
//
// Info: operation milestones
//   - Page loaded (page, size, total_items)
//   - Export progress and completion
//   - Server startup/shutdown
//
// Warn: degraded but working
//   - Retry attempts, cache errors (falls back to the gateway)
//   - Page fetch failed (previous page stays on screen)
//
// Error: failures requiring attention
//   - Requests failed after retries
//   - Configuration errors
//
// Context Fields:
//   - component: emitting package (payment-client, pagination, view, cli)
//   - endpoint: gateway route template, e.g. /payments/{id}
//   - request_id: X-Request-ID sent to the gateway
//   - status_code: HTTP status code
//   - error_class: client, server, network, decode
//   - page, size, seq: page fetch coordinates and sequence number
//   - total_items, total_pages: gateway totals
