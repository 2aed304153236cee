package databank

import (
	"context"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// BOCAName is the catalog name of the BOCA assessment dates dataset.
const BOCAName = "BOCA Assessment Dates"

func init() {
	factory.Register(factory.Spec{
		Name:     BOCAName,
		Required: []string{dataset.ArgAPIKey},
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return NewBOCA(info, args, deps)
		},
	})
}

// BOCA lists the branch capacity assessments each National Society has run.
type BOCA struct {
	dataset.Base
	endpoint
	policy identity.Policy
}

// NewBOCA creates the BOCA Assessment Dates loader.
func NewBOCA(info catalog.Info, args dataset.Args, deps factory.Deps) (*BOCA, error) {
	policy, err := args.Policy(identity.Raise)
	if err != nil {
		return nil, err
	}
	return &BOCA{
		Base:     dataset.NewBase(info, deps.Registry),
		endpoint: newEndpoint(args, deps),
		policy:   policy,
	}, nil
}

// Pull implements dataset.Dataset.
func (d *BOCA) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	var resp []map[string]any
	if err := d.client.GetJSON(ctx, d.url("/api/bocapublic"), &resp); err != nil {
		return nil, err
	}
	return table.FromObjects(resp), nil
}

// Process implements dataset.Dataset.
func (d *BOCA) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone()
	t, err := d.ResolveIdentity(ctx, t, identity.RegistryID, "NsId", d.policy)
	if err != nil {
		return nil, err
	}
	t = d.RenameColumns(t.Drop("NsName"), true)
	return d.OrderColumns(t, d.Info().ColumnNames(), false)
}

// Latest keeps the most recent assessment of each branch.
func (d *BOCA) Latest(_ context.Context, data *table.Table) (*table.Table, error) {
	out := data.Clone().SortBy(
		table.Asc(constants.ColumnName),
		table.Asc("Branch"),
		table.Desc("Assessment date"),
	)
	return out.DedupFirst(constants.ColumnName, "Branch"), nil
}
