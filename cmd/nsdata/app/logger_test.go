package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{name: "default", config: Config{}, want: "info"},
		{name: "verbose", config: Config{Verbose: true}, want: "debug"},
		{name: "quiet", config: Config{Quiet: true}, want: "warn"},
		{name: "verbose and quiet", config: Config{Verbose: true, Quiet: true}, want: "warn"},
		{name: "explicit wins", config: Config{LogLevel: "error", Verbose: true}, want: "error"},
		{name: "explicit is case-insensitive", config: Config{LogLevel: "TRACE"}, want: "trace"},
		{name: "warning alias", config: Config{LogLevel: "Warning"}, want: "warn"},
		{name: "off", config: Config{LogLevel: "off", Verbose: true}, want: "off"},
		{name: "invalid explicit", config: Config{LogLevel: "loud"}, want: "info"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(&tt.config))
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(&Config{Quiet: true, LogOutput: "discard"})
	assert.Equal(t, "warn", logger.GetLevel().String())
}
