// Package factory maps dataset names to loader constructors. Loader packages
// register themselves from init().
package factory

import (
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/ifrc-nsd/nsdata/internal/transport"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
	"github.com/ifrc-nsd/nsdata/pkg/resolver"
)

// Deps are the shared collaborators handed to every loader.
type Deps struct {
	Registry   *registry.Cache
	HTTPClient *http.Client
	// BaseURL replaces the loader's default endpoint. Tests point it at an
	// httptest server.
	BaseURL string
	// Resolver overrides the process-wide Databank resolver.
	Resolver *resolver.Resolver
}

// URL returns the configured base URL or def.
func (d Deps) URL(def string) string {
	if d.BaseURL != "" {
		return strings.TrimRight(d.BaseURL, "/")
	}
	return def
}

// Client builds a transport client for source.
func (d Deps) Client(source string, opts ...transport.Option) *transport.Client {
	return transport.New(source, append([]transport.Option{transport.WithHTTPClient(d.HTTPClient)}, opts...)...)
}

// ResolverFor returns the Databank ID resolver for apiKey.
func (d Deps) ResolverFor(apiKey string) *resolver.Resolver {
	if d.Resolver != nil {
		return d.Resolver
	}
	if d.BaseURL == "" && d.HTTPClient == nil {
		return resolver.Default(apiKey)
	}
	return resolver.New(
		resolver.NewDatabankFetcher(apiKey,
			resolver.WithBaseURL(d.URL(constants.DatabankURL)),
			resolver.WithHTTPClient(d.HTTPClient)),
		resolver.WithRegistry(d.registry()))
}

func (d Deps) registry() *registry.Cache {
	if d.Registry == nil {
		return registry.Default()
	}
	return d.Registry
}

// Constructor builds a loader from its catalog entry and arguments. Required
// arguments are checked before it is called.
type Constructor func(info catalog.Info, args dataset.Args, deps Deps) (dataset.Dataset, error)

// Spec describes one registered loader.
type Spec struct {
	Name     string
	Required []string
	New      Constructor
}

var (
	mu    sync.RWMutex
	specs = make(map[string]Spec)
)

// Register adds a loader. It panics on duplicate names.
func Register(spec Spec) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := specs[spec.Name]; exists {
		panic(fmt.Sprintf("dataset %q registered twice", spec.Name))
	}
	specs[spec.Name] = spec
}

// Lookup returns the spec registered under name.
func Lookup(name string) (Spec, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := specs[name]
	return s, ok
}

// Names returns all registered dataset names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(specs))
	for n := range specs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Factory constructs registered loaders with a fixed set of dependencies.
type Factory struct {
	deps Deps
}

// New creates a factory.
func New(deps Deps) *Factory {
	if deps.Registry == nil {
		deps.Registry = registry.Default()
	}
	return &Factory{deps: deps}
}

// Required returns the argument names the dataset needs.
func (f *Factory) Required(name string) []string {
	s, ok := Lookup(name)
	if !ok {
		return nil
	}
	return slices.Clone(s.Required)
}

// New constructs the loader for a catalog entry.
func (f *Factory) New(info catalog.Info, args dataset.Args) (dataset.Dataset, error) {
	s, ok := Lookup(info.Name)
	if !ok {
		return nil, errors.NewNotFoundError("dataset loader", info.Name)
	}
	if err := args.Require(info.Name, s.Required...); err != nil {
		return nil, err
	}
	return s.New(info, args, f.deps)
}
