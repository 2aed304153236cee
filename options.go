package nsdata

import (
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/collector"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
)

// Option is a function that configures a Client.
type Option func(*options) error

// options holds the client configuration.
type options struct {
	catalog      *catalog.Catalog
	registry     *registry.Cache
	registryFile string
	fixtureFiles []string

	factory     collector.Factory
	httpClient  *http.Client
	baseURL     string
	concurrency int

	// args keyed by lowercased dataset name, or collector.AllDatasets
	args map[string]dataset.Args
}

func defaults() *options {
	return &options{
		concurrency: constants.DefaultConcurrency,
		args:        make(map[string]dataset.Args),
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// registryCache returns the configured registry, a file-backed one, or the
// process-wide embedded registry.
func (o *options) registryCache() *registry.Cache {
	switch {
	case o.registry != nil:
		return o.registry
	case o.registryFile != "":
		fixtures := make([]registry.LoadOption, len(o.fixtureFiles))
		for i, f := range o.fixtureFiles {
			fixtures[i] = registry.WithFixtureFile(f)
		}
		dir, file := filepath.Split(o.registryFile)
		if dir == "" {
			dir = "."
		}
		return registry.NewCache(registry.FSLoader(os.DirFS(dir), file, fixtures...))
	case len(o.fixtureFiles) > 0:
		fixtures := make([]registry.LoadOption, len(o.fixtureFiles))
		for i, f := range o.fixtureFiles {
			fixtures[i] = registry.WithFixtureFile(f)
		}
		return registry.NewCache(registry.EmbeddedLoader(fixtures...))
	}
	return registry.Default()
}

func argsKey(name string) string {
	name = strings.TrimSpace(name)
	if name == collector.AllDatasets {
		return name
	}
	return strings.ToLower(name)
}

// mergeArgs layers request arguments over the configured ones.
func (o *options) mergeArgs(req map[string]dataset.Args) map[string]dataset.Args {
	out := make(map[string]dataset.Args, len(o.args)+len(req))
	for k, a := range o.args {
		out[k] = maps.Clone(a)
	}
	for k, a := range req {
		key := argsKey(k)
		if out[key] == nil {
			out[key] = dataset.Args{}
		}
		maps.Copy(out[key], a)
	}
	return out
}

// WithCatalog uses cat instead of the embedded catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(o *options) error {
		o.catalog = cat
		return nil
	}
}

// WithCatalogFile loads the dataset catalog from a YAML file.
func WithCatalogFile(path string) Option {
	return func(o *options) error {
		dir, file := filepath.Split(path)
		if dir == "" {
			dir = "."
		}
		cat, err := catalog.Load(os.DirFS(dir), file)
		if err != nil {
			return errors.NewConfigError("catalog", "loading "+path, err)
		}
		o.catalog = cat
		return nil
	}
}

// WithRegistry uses reg instead of the embedded National Society registry.
func WithRegistry(reg *registry.Cache) Option {
	return func(o *options) error {
		o.registry = reg
		return nil
	}
}

// WithRegistryFile loads the National Society registry from a YAML file on
// first use.
func WithRegistryFile(path string) Option {
	return func(o *options) error {
		if _, err := os.Stat(path); err != nil {
			return errors.NewConfigError("registry", "registry file "+path, err)
		}
		o.registryFile = path
		return nil
	}
}

// WithFixtureFile appends the records of a YAML file to the registry.
// Ignored when WithRegistry is used.
func WithFixtureFile(path string) Option {
	return func(o *options) error {
		if path != "" {
			o.fixtureFiles = append(o.fixtureFiles, path)
		}
		return nil
	}
}

// WithFactory replaces the built-in dataset loaders.
func WithFactory(f collector.Factory) Option {
	return func(o *options) error {
		o.factory = f
		return nil
	}
}

// WithHTTPClient configures the HTTP client used by the API loaders.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) error {
		o.httpClient = c
		return nil
	}
}

// WithBaseURL points every API loader at one base URL. Used against test
// servers and mirrors.
func WithBaseURL(url string) Option {
	return func(o *options) error {
		o.baseURL = url
		return nil
	}
}

// WithConcurrency bounds how many datasets are fetched at once.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewValidationError("concurrency", n, "must be at least 1")
		}
		o.concurrency = n
		return nil
	}
}

// WithDatasetArgs sets default constructor arguments for a dataset. Use
// collector.AllDatasets to set them for every dataset. Request arguments take
// precedence.
func WithDatasetArgs(name string, args dataset.Args) Option {
	return func(o *options) error {
		key := argsKey(name)
		if o.args[key] == nil {
			o.args[key] = dataset.Args{}
		}
		maps.Copy(o.args[key], args)
		return nil
	}
}
