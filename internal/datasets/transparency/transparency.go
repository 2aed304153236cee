// Package transparency loads the Corruption Perception Index published by
// Transparency International.
package transparency

import (
	"context"
	"slices"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/internal/transport"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// Name is the catalog name of the dataset.
const Name = "Corruption Perception Index"

func init() {
	factory.Register(factory.Spec{
		Name: Name,
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return New(info, args, deps)
		},
	})
}

// CPI loads the score and rank of every country in the latest index.
type CPI struct {
	dataset.Base
	client *transport.Client
	url    string
	policy identity.Policy
}

// New creates the Corruption Perception Index loader.
func New(info catalog.Info, args dataset.Args, deps factory.Deps) (*CPI, error) {
	policy, err := args.Policy(identity.Warn)
	if err != nil {
		return nil, err
	}
	u := constants.CPIURL
	if deps.BaseURL != "" {
		u = deps.URL("") + "/api/latest/cpi"
	}
	return &CPI{
		Base:   dataset.NewBase(info, deps.Registry),
		client: deps.Client("transparency"),
		url:    u,
		policy: policy,
	}, nil
}

// Pull implements dataset.Dataset.
func (d *CPI) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	var records []map[string]any
	if err := d.client.GetJSON(ctx, d.url, &records); err != nil {
		return nil, err
	}
	return table.FromObjects(records), nil
}

// Process melts score and rank into one indicator row each.
func (d *CPI) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone().Drop("country", "region")
	t, err := d.ResolveIdentity(ctx, t, identity.ISO3, "iso3", d.policy)
	if err != nil {
		return nil, err
	}

	ids := append(slices.Clone(constants.IdentityColumns), "year")
	t = t.Melt(ids, constants.ColumnIndicator, constants.ColumnValue).
		DropEmpty(constants.ColumnValue)
	t.Rename(map[string]string{"year": constants.ColumnYear})

	if t, err = d.RenameIndicators(ctx, t, identity.Raise); err != nil {
		return nil, err
	}
	return d.OrderColumns(t, []string{constants.ColumnIndicator, constants.ColumnValue, constants.ColumnYear}, true)
}
