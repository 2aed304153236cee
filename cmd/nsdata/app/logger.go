package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ifrc-nsd/nsdata/pkg/logging"
)

// NewLogger builds the CLI logger. Level precedence, highest first:
//  1. --log-level, NSDATA_LOG_LEVEL or LOG_LEVEL
//  2. -q/--quiet (warn), which also wins over --verbose
//  3. -v/--verbose (debug)
//  4. info
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)

	return logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor || os.Getenv("NO_COLOR") != "",
		AddCaller: level == "debug" || level == "trace",
	})
}

func determineLogLevel(config *Config) string {
	switch {
	case config.LogLevel != "":
		level, ok := normalizeLogLevel(config.LogLevel)
		if !ok {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", config.LogLevel, level)
		}
		return level
	case config.Quiet:
		if config.Verbose {
			fmt.Fprintln(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet")
		}
		return "warn"
	case config.Verbose:
		return "debug"
	default:
		return "info"
	}
}

// normalizeLogLevel lowercases level and maps "warning" to "warn". Unknown
// levels become info.
func normalizeLogLevel(level string) (string, bool) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "trace", "debug", "info", "warn", "error", "off":
		return level, true
	case "warning":
		return "warn", true
	}
	return "info", false
}
