// Package logging provides structured logging for the nsdata pipeline using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise.
//
// Identity diagnostics (unknown names, skipped datasets, filters that could not be
// pushed down) are emitted as warnings with structured fields:
//
//	logging.Unknown(logging.FromContext(ctx), "ISO3", "", unknown).
//	    Str("dataset", name).
//	    Msg("Unknown values in data")
package logging

import (
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger atomic.Pointer[zerolog.Logger]

func init() {
	cfg := configFromEnv()
	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	SetDefault(NewLoggerFromConfig(cfg))
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger. zerolog's global log.Logger
// follows it so third-party code logging through zerolog/log agrees.
func SetDefault(logger zerolog.Logger) {
	defaultLogger.Store(&logger)
	log.Logger = logger
}

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event {
	return Default().Debug()
}

// Info starts an info event on the default logger.
func Info() *zerolog.Event {
	return Default().Info()
}

// Warn starts a warning event on the default logger.
func Warn() *zerolog.Event {
	return Default().Warn()
}

// Unknown starts the warning emitted for values missing from the registry.
// target is empty when values were being cleaned rather than mapped.
func Unknown(l *zerolog.Logger, dimension, target string, values []string) *zerolog.Event {
	e := l.Warn().Str("dimension", dimension)
	if target != "" {
		e = e.Str("target", target)
	}
	return e.Strs("values", values).Int("count", len(values))
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
