// Package nsdata is the entry point for collecting National Society data.
// It wires the dataset catalog, the canonical National Society registry and
// the dataset loaders into a single client.
//
// The client offers:
//   - the catalog of available datasets and metadata filtering over it
//   - identity cleaning and mapping against the registry
//   - concurrent collection of datasets and the merged indicator log
//   - event hooks fired as datasets are collected or skipped
//   - saving a collected batch to disk
//
// Example usage:
//
//	client, err := nsdata.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnDatasetSkipped(func(s collector.Skipped) {
//	    log.Printf("skipped %s: %v", s.Name, s.Err)
//	})
//
//	batch, err := client.GetData(ctx, collector.Request{
//	    Datasets: []string{"OCAC", "World Development Indicators"},
//	    Latest:   true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, res := range batch.Results {
//	    fmt.Println(res.Name, res.Data.Len())
//	}
package nsdata

import (
	"context"

	"github.com/ifrc-nsd/nsdata/internal/datasets"
	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/collector"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client collects National Society datasets.
type Client interface {

	// Catalog gives access to the dataset catalog
	Catalog

	// Identity cleans and maps National Society identities
	Identity

	// Collector runs datasets
	Collector

	// Persistence saves collected batches
	Persistence

	// Hooks provides access to event callback registration
	Hooks
}

// Collector runs datasets and merges indicator datasets.
type Collector interface {
	GetData(ctx context.Context, req collector.Request) (*collector.Batch, error)
	GetIndicatorsData(ctx context.Context, req collector.Request, opts ...collector.LogOption) (*collector.IndicatorLog, error)
}

// client is the internal implementation of the Client interface.
type client struct {
	options   *options
	catalog   *catalog.Catalog
	registry  *registry.Cache
	collector *collector.Collector
	hooks     *hooks
}

// New creates a new Client with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	cat := o.catalog
	if cat == nil {
		if cat, err = catalog.Embedded(); err != nil {
			return nil, errors.NewConfigError("catalog", "loading embedded catalog", err)
		}
	}

	reg := o.registryCache()

	f := o.factory
	if f == nil {
		f = datasets.NewFactory(factory.Deps{
			Registry:   reg,
			HTTPClient: o.httpClient,
			BaseURL:    o.baseURL,
		})
	}

	logging.Debug().
		Int("datasets", cat.Len()).
		Int("concurrency", o.concurrency).
		Msg("Client created")

	return &client{
		options:   o,
		catalog:   cat,
		registry:  reg,
		collector: collector.New(cat, f, reg, collector.WithConcurrency(o.concurrency)),
		hooks:     newHooks(),
	}, nil
}

// GetData runs the requested datasets and fires the registered hooks for
// each result and each skipped dataset.
func (c *client) GetData(ctx context.Context, req collector.Request) (*collector.Batch, error) {
	req.Args = c.options.mergeArgs(req.Args)
	batch, err := c.collector.GetData(ctx, req)
	if batch != nil {
		c.hooks.triggerBatch(batch)
	}
	return batch, err
}

// GetIndicatorsData runs the indicator datasets of the request and merges
// them into one log. Skipped datasets fire the skip hooks.
func (c *client) GetIndicatorsData(ctx context.Context, req collector.Request, opts ...collector.LogOption) (*collector.IndicatorLog, error) {
	req.Args = c.options.mergeArgs(req.Args)
	log, err := c.collector.GetIndicatorsData(ctx, req, opts...)
	if log != nil {
		c.hooks.triggerSkipped(log.Skipped)
	}
	return log, err
}
