// Package logging provides structured diagnostic logging with zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level      string    // trace, debug, info, warn, error
	Format     string    // json, console
	TimeFormat string    // RFC3339, Unix, etc.
	Output     io.Writer // defaults to stderr
}

// DefaultConfig returns the default logging configuration.
// Warn keeps a normal run quiet on the console.
func DefaultConfig() Config {
	return Config{
		Level:      "warn",
		Format:     "console",
		TimeFormat: time.RFC3339,
	}
}

// Init initializes the global zerolog logger used for diagnostics.
// The level is set on the logger rather than globally so that loggers
// built elsewhere, such as the report sink, are unaffected.
func Init(cfg Config) zerolog.Logger {
	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.WarnLevel
	}

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.Kitchen,
		}
	}

	log.Logger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", "event-schema-validator").
		Logger()
	return log.Logger
}

// Logger returns the global diagnostic logger.
func Logger() zerolog.Logger {
	return log.Logger
}

// WithRun returns a logger with run context.
func WithRun(runId string) zerolog.Logger {
	return log.With().
		Str("runId", runId).
		Logger()
}

// WithEvent returns a logger with event context.
func WithEvent(runId string, seq int, filename string) zerolog.Logger {
	return log.With().
		Str("runId", runId).
		Int("seq", seq).
		Str("file", filename).
		Logger()
}

// WithComponent returns a logger with a component tag.
func WithComponent(component string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Logger()
}
