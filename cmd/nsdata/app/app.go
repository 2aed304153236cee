// Package app provides the application context and dependency management
// for the nsdata CLI. Configuration, logging and the nsdata client live here
// and are handed to commands through appcontext.Interface.
package app

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ifrc-nsd/nsdata"
	"github.com/ifrc-nsd/nsdata/internal/appcontext"
	"github.com/ifrc-nsd/nsdata/pkg/collector"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App represents the nsdata application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger

	// extra client options, used by tests
	clientOpts []nsdata.Option

	// client is lazy-initialized
	mu     sync.Mutex
	client nsdata.Client
}

// Option configures an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithClientOptions adds options used when the client is created.
func WithClientOptions(opts ...nsdata.Option) Option {
	return func(a *App) error {
		a.clientOpts = append(a.clientOpts, opts...)
		return nil
	}
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		config, err := LoadConfig()
		if err != nil {
			return nil, err
		}
		app.config = config
	}

	logger := NewLogger(app.config)
	app.logger = &logger

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Output
}

// Client returns the nsdata client, creating it on first use.
func (a *App) Client() (nsdata.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	client, err := nsdata.New(append(a.clientOptions(), a.clientOpts...)...)
	if err != nil {
		return nil, errors.NewConfigError("client", "creating nsdata client", err)
	}
	a.client = client
	return client, nil
}

// clientOptions translates the configuration into client options.
func (a *App) clientOptions() []nsdata.Option {
	c := a.config
	opts := []nsdata.Option{nsdata.WithConcurrency(c.Concurrency)}
	if c.RegistryFile != "" {
		opts = append(opts, nsdata.WithRegistryFile(c.RegistryFile))
	}
	if c.CatalogFile != "" {
		opts = append(opts, nsdata.WithCatalogFile(c.CatalogFile))
	}
	if c.DatabankAPIKey != "" {
		opts = append(opts, nsdata.WithDatasetArgs(collector.AllDatasets, dataset.Args{dataset.ArgAPIKey: c.DatabankAPIKey}))
	}

	names := make([]string, 0, len(c.Datasets))
	for name := range c.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, nsdata.WithDatasetArgs(name, c.Datasets[name]))
	}
	return opts
}
