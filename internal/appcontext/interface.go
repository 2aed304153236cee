// Package appcontext provides the shared application context interface
// used by all commands.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/ifrc-nsd/nsdata"
)

// Interface defines what commands need from the application. The App in
// cmd/nsdata/app implements it; tests supply their own.
type Interface interface {
	// Client returns the shared nsdata client, creating it lazily.
	Client() (nsdata.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, ...).
	OutputFormat() string

	// Version returns the application version string.
	Version() string
}
