package databank

import (
	"context"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// ContactsName is the catalog name of the NS Contacts dataset.
const ContactsName = "NS Contacts"

func init() {
	factory.Register(factory.Spec{
		Name:     ContactsName,
		Required: []string{dataset.ArgAPIKey},
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return NewContacts(info, args, deps)
		},
	})
}

// Contacts holds the address, phone, email and website of each National Society.
type Contacts struct {
	dataset.Base
	endpoint
	policy identity.Policy
}

// NewContacts creates the NS Contacts loader.
func NewContacts(info catalog.Info, args dataset.Args, deps factory.Deps) (*Contacts, error) {
	policy, err := args.Policy(identity.Raise)
	if err != nil {
		return nil, err
	}
	return &Contacts{
		Base:     dataset.NewBase(info, deps.Registry),
		endpoint: newEndpoint(args, deps),
		policy:   policy,
	}, nil
}

// Pull implements dataset.Dataset.
func (d *Contacts) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	var resp []map[string]any
	if err := d.client.GetJSON(ctx, d.url("/api/entities/ns"), &resp); err != nil {
		return nil, err
	}
	return table.FromObjects(resp), nil
}

// Process implements dataset.Dataset.
func (d *Contacts) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone()
	t, err := d.ResolveIdentity(ctx, t, identity.Name, "NSO_DON_name", d.policy)
	if err != nil {
		return nil, err
	}
	t = d.RenameColumns(t, true)
	return d.OrderColumns(t, d.Info().ColumnNames(), false)
}
