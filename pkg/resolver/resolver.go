// Package resolver converts between National Society IDs used by the NS
// Databank and National Society names. The Databank's full table is fetched on
// first use and cached for the lifetime of the process.
package resolver

import (
	"context"
	"strings"

	"github.com/ifrc-nsd/nsdata/internal/cache"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
)

// shared holds one table per Databank base URL for all default resolvers.
var shared = cache.NewProcess()

// Resolver maps Databank IDs to names and back.
type Resolver struct {
	fetcher  Fetcher
	registry *registry.Cache
	cache    *cache.Cache
	key      string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache stores the fetched table in c under key.
func WithCache(c *cache.Cache, key string) Option {
	return func(r *Resolver) {
		r.cache = c
		r.key = key
	}
}

// WithRegistry sets the registry used by the CleanNames fallback.
func WithRegistry(reg *registry.Cache) Option {
	return func(r *Resolver) {
		r.registry = reg
	}
}

// New creates a resolver around a fetcher. Without WithCache the resolver
// keeps its own private cache.
func New(fetcher Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:  fetcher,
		registry: registry.Default(),
		cache:    cache.NewProcess(),
		key:      "table",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default returns a resolver for the public Databank that shares its table
// with every other default resolver in the process.
func Default(apiKey string) *Resolver {
	return New(NewDatabankFetcher(apiKey), WithCache(shared, constants.DatabankURL))
}

type resolveOptions struct {
	reverse    bool
	cleanNames bool
}

// ResolveOption configures a Resolve call.
type ResolveOption func(*resolveOptions)

// Reverse maps names to IDs instead of IDs to names.
func Reverse() ResolveOption {
	return func(o *resolveOptions) { o.reverse = true }
}

// CleanNames tries to recover unknown tokens by treating them as country or
// alternative National Society names before resolving.
func CleanNames() ResolveOption {
	return func(o *resolveOptions) { o.cleanNames = true }
}

// Table returns the cached id to name table, or name to id when reverse is set.
func (r *Resolver) Table(ctx context.Context, reverse bool) (map[string]string, error) {
	v, err := r.cache.Load(r.key, func() (any, error) {
		logging.FromContext(ctx).Debug().Str("key", r.key).Msg("Fetching National Society ID table")
		return r.fetcher.FetchTable(ctx)
	})
	if err != nil {
		return nil, err
	}
	table := v.(map[string]string)

	out := make(map[string]string, len(table))
	for id, name := range table {
		if reverse {
			out[name] = id
		} else {
			out[id] = name
		}
	}
	return out, nil
}

// Refresh drops the cached table so the next call fetches it again. The
// table is shared with every resolver using the same cache and key.
func (r *Resolver) Refresh() {
	r.cache.Delete(r.key)
}

// Resolve maps each token through the table. Unresolved tokens pass through
// unchanged and are reported in a single warning.
func (r *Resolver) Resolve(ctx context.Context, tokens []string, opts ...ResolveOption) ([]string, error) {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}

	table, err := r.Table(ctx, o.reverse)
	if err != nil {
		return nil, err
	}

	data := tokens
	if o.cleanNames && len(unknownTokens(data, table)) > 0 {
		data, err = r.clean(data, o.reverse)
		if err != nil {
			return nil, err
		}
	}

	if unknown := unknownTokens(data, table); len(unknown) > 0 {
		msg := "Unknown NS IDs cannot be converted to NS names"
		if o.reverse {
			msg = "Unknown NS names cannot be converted to IDs"
		}
		logging.FromContext(ctx).Warn().Strs("values", unknown).Msg(msg)
	}

	out := make([]string, len(data))
	for i, tok := range data {
		if v, ok := table[tok]; ok {
			out[i] = v
		} else {
			out[i] = tok
		}
	}
	return out, nil
}

func (r *Resolver) clean(tokens []string, reverse bool) ([]string, error) {
	reg, err := r.registry.Get()
	if err != nil {
		return nil, err
	}
	m := identity.NewMapper(reg)

	data, err := m.CountryToName(tokens, identity.Ignore)
	if err != nil {
		return nil, err
	}
	if data, err = m.CleanNames(data, identity.Ignore); err != nil {
		return nil, err
	}
	if !reverse {
		if data, err = m.Map(data, identity.Name, identity.RegistryID, identity.Ignore); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func unknownTokens(tokens []string, table map[string]string) []string {
	seen := make(map[string]bool)
	var unknown []string
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == "" || seen[tok] {
			continue
		}
		if _, ok := table[tok]; !ok {
			unknown = append(unknown, tok)
			seen[tok] = true
		}
	}
	return unknown
}
