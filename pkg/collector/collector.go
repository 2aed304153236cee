// Package collector selects datasets from the catalog, runs them
// concurrently and merges indicator datasets into one indicator log.
package collector

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
)

// AllDatasets is the Args key whose arguments apply to every dataset.
// Per-dataset arguments take precedence.
const AllDatasets = "*"

// Factory builds dataset loaders from catalog entries.
type Factory interface {
	Required(name string) []string
	New(info catalog.Info, args dataset.Args) (dataset.Dataset, error)
}

// Collector runs catalog datasets.
type Collector struct {
	catalog     *catalog.Catalog
	factory     Factory
	registry    *registry.Cache
	concurrency int
}

// Option configures a Collector.
type Option func(*Collector)

// WithConcurrency bounds how many datasets are fetched at once.
func WithConcurrency(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New creates a collector. A nil registry uses the embedded one.
func New(cat *catalog.Catalog, factory Factory, reg *registry.Cache, opts ...Option) *Collector {
	if reg == nil {
		reg = registry.Default()
	}
	c := &Collector{
		catalog:     cat,
		factory:     factory,
		registry:    reg,
		concurrency: constants.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the catalog the collector selects from.
func (c *Collector) Catalog() *catalog.Catalog {
	return c.catalog
}

// Request selects and parameterises the datasets of one batch.
type Request struct {
	// Datasets to run; empty means every catalog dataset.
	Datasets []string
	// Args keyed by dataset name, matched case-insensitively. AllDatasets
	// supplies defaults.
	Args map[string]dataset.Args
	// Filters restrict rows by National Society.
	Filters dataset.Filters
	// Predicate restricts datasets by catalog metadata.
	Predicate map[string]string
	// Latest keeps the most recent values only.
	Latest bool
}

// Skipped records a dataset that produced no result.
type Skipped struct {
	Name string
	Err  error
}

// Batch is the outcome of one GetData call.
type Batch struct {
	RunID    string
	Results  []*dataset.Result
	Skipped  []Skipped
	Started  time.Time
	Finished time.Time
	Duration time.Duration
}

// Result returns the result for a dataset name.
func (b *Batch) Result(name string) (*dataset.Result, bool) {
	for _, r := range b.Results {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return nil, false
}

func (b *Batch) partialError() error {
	if len(b.Results) > 0 || len(b.Skipped) == 0 {
		return nil
	}
	skipped := make(map[string]error, len(b.Skipped))
	for _, s := range b.Skipped {
		skipped[s.Name] = s.Err
	}
	return &errors.PartialBatchError{Skipped: skipped}
}

// ValidateNames resolves requested dataset names case-insensitively.
// Unknown names are dropped with a warning.
func (c *Collector) ValidateNames(ctx context.Context, requested []string) []string {
	var valid, unknown []string
	for _, name := range requested {
		info, ok := c.catalog.Lookup(name)
		if !ok {
			unknown = append(unknown, strings.TrimSpace(name))
			continue
		}
		if !slices.Contains(valid, info.Name) {
			valid = append(valid, info.Name)
		}
	}
	if len(unknown) > 0 {
		logging.FromContext(ctx).Warn().
			Strs("unknown", unknown).
			Strs("options", c.catalog.Names()).
			Msg("Ignoring unknown datasets")
	}
	return valid
}

// FilterCatalog keeps the datasets whose metadata matches every predicate
// entry. Keys and values are compared case-insensitively.
func (c *Collector) FilterCatalog(names []string, predicate map[string]string) ([]string, error) {
	if len(predicate) == 0 {
		return names, nil
	}
	validKeys := c.catalog.FilterKeys()
	want := make(map[string]string, len(predicate))
	for k, v := range predicate {
		key := strings.ToLower(strings.TrimSpace(k))
		if !slices.Contains(validKeys, key) {
			return nil, errors.NewValidationError("predicate", k,
				"unknown dataset attribute; valid attributes are "+strings.Join(validKeys, ", "))
		}
		want[key] = strings.TrimSpace(v)
	}

	var out []string
	for _, name := range names {
		info, ok := c.catalog.Get(name)
		if !ok {
			continue
		}
		meta := info.Metadata()
		if matches(meta, want) {
			out = append(out, name)
		}
	}
	return out, nil
}

func matches(meta, want map[string]string) bool {
	for k, v := range want {
		got, ok := meta[k]
		if !ok || !strings.EqualFold(got, v) {
			return false
		}
	}
	return true
}

// Instance is a constructed dataset ready to run.
type Instance struct {
	Name   string
	Runner *dataset.Runner
}

// Instantiate constructs the named datasets. Datasets with missing required
// arguments or failing constructors are skipped with a warning.
func (c *Collector) Instantiate(ctx context.Context, names []string, args map[string]dataset.Args) ([]Instance, []Skipped) {
	logger := logging.FromContext(ctx)
	var instances []Instance
	var skipped []Skipped
	for _, name := range names {
		info, ok := c.catalog.Get(name)
		if !ok {
			skipped = append(skipped, Skipped{Name: name, Err: errors.NewNotFoundError("dataset", name)})
			continue
		}
		a := argsFor(name, args)
		err := a.Require(name, c.factory.Required(name)...)
		var ds dataset.Dataset
		if err == nil {
			ds, err = c.factory.New(info, a)
		}
		if err != nil {
			logger.Warn().Err(err).Str("dataset", name).Msg("Skipping dataset")
			skipped = append(skipped, Skipped{Name: name, Err: err})
			continue
		}
		instances = append(instances, Instance{Name: name, Runner: dataset.NewRunner(ds, info, c.registry)})
	}
	return instances, skipped
}

// argsFor merges the shared arguments with the dataset's own.
func argsFor(name string, all map[string]dataset.Args) dataset.Args {
	out := dataset.Args{}
	for k, v := range all[AllDatasets] {
		out[k] = v
	}
	for key, a := range all {
		if key == AllDatasets || !strings.EqualFold(strings.TrimSpace(key), name) {
			continue
		}
		for k, v := range a {
			out[k] = v
		}
	}
	return out
}

// GetData runs the requested datasets concurrently. Filter and predicate
// errors are returned before anything runs. A dataset that fails is listed in
// Batch.Skipped; when every dataset fails a PartialBatchError is returned with
// the batch.
func (c *Collector) GetData(ctx context.Context, req Request) (*Batch, error) {
	batch := &Batch{RunID: uuid.NewString(), Started: time.Now().UTC()}
	ctx = logging.WithRunID(ctx, batch.RunID)
	logger := logging.FromContext(ctx)

	if !req.Filters.Empty() {
		reg, err := c.registry.Get()
		if err != nil {
			return nil, err
		}
		if err := dataset.ValidateFilters(reg, req.Filters); err != nil {
			return nil, err
		}
	}

	names := c.catalog.Names()
	if len(req.Datasets) > 0 {
		names = c.ValidateNames(ctx, req.Datasets)
	}
	names, err := c.FilterCatalog(names, req.Predicate)
	if err != nil {
		return nil, err
	}

	instances, skipped := c.Instantiate(ctx, names, req.Args)
	batch.Skipped = skipped
	logger.Info().Int("datasets", len(instances)).Int("concurrency", c.concurrency).Msg("Collecting datasets")

	results := make([]*dataset.Result, len(instances))
	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(c.concurrency)
	for i, inst := range instances {
		p.Go(func() {
			res, err := inst.Runner.GetData(ctx, req.Filters, req.Latest)
			if err != nil {
				logger.Warn().Err(err).Str("dataset", inst.Name).Msg("Dataset failed")
				mu.Lock()
				batch.Skipped = append(batch.Skipped, Skipped{Name: inst.Name, Err: err})
				mu.Unlock()
				return
			}
			results[i] = res
		})
	}
	p.Wait()

	for _, r := range results {
		if r != nil {
			batch.Results = append(batch.Results, r)
		}
	}
	slices.SortFunc(batch.Skipped, func(a, b Skipped) int { return strings.Compare(a.Name, b.Name) })
	batch.Finished = time.Now().UTC()
	batch.Duration = batch.Finished.Sub(batch.Started)

	logger.Info().
		Int("results", len(batch.Results)).
		Int("skipped", len(batch.Skipped)).
		Dur("elapsed", batch.Duration).
		Msg("Collection finished")

	if err := ctx.Err(); err != nil {
		return batch, err
	}
	return batch, batch.partialError()
}
