package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/ifrc-nsd/nsdata"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	ClientFunc   func() (nsdata.Client, error)
	LoggerFunc   func() *zerolog.Logger
	Format       string
	VersionValue string
}

// Client returns a client using the mock function or nil.
func (m *Mock) Client() (nsdata.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return nil, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format, or json so output is stable in tests.
func (m *Mock) OutputFormat() string {
	if m.Format != "" {
		return m.Format
	}
	return "json"
}

// Version returns VersionValue or "dev".
func (m *Mock) Version() string {
	if m.VersionValue != "" {
		return m.VersionValue
	}
	return "dev"
}

var _ Interface = (*Mock)(nil)
