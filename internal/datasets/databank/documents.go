package databank

import (
	"context"
	"net/url"
	"slices"
	"strings"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/resolver"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// DocumentsName is the catalog name of the NS Documents dataset.
const DocumentsName = "NS Documents"

func init() {
	factory.Register(factory.Spec{
		Name:     DocumentsName,
		Required: []string{dataset.ArgAPIKey},
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return NewDocuments(info, args, deps)
		},
	})
}

// Documents lists the annual reports, strategic plans, financial statements
// and statutes uploaded by each National Society.
type Documents struct {
	dataset.Base
	endpoint
	resolver *resolver.Resolver
	policy   identity.Policy
}

// NewDocuments creates the NS Documents loader.
func NewDocuments(info catalog.Info, args dataset.Args, deps factory.Deps) (*Documents, error) {
	policy, err := args.Policy(identity.Raise)
	if err != nil {
		return nil, err
	}
	ep := newEndpoint(args, deps)
	return &Documents{
		Base:     dataset.NewBase(info, deps.Registry),
		endpoint: ep,
		resolver: deps.ResolverFor(ep.apiKey),
		policy:   policy,
	}, nil
}

type nsDocuments struct {
	Code      string `json:"code"`
	Documents []struct {
		Name         string `json:"name"`
		DocumentType string `json:"document_type"`
		Year         any    `json:"year"`
		URL          string `json:"url"`
	} `json:"documents"`
}

// Pull requests the documents of every National Society known to the
// Databank in a single call.
func (d *Documents) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	ids, err := d.resolver.Table(ctx, false)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(ids))
	for id := range ids {
		codes = append(codes, id)
	}
	slices.Sort(codes)

	var resp []nsDocuments
	u := d.url("/api/documents") + "?ns=" + url.QueryEscape(strings.Join(codes, ","))
	if err := d.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	t := table.New(columnNSID, "name", "document_type", "year", "url")
	for _, ns := range resp {
		for _, doc := range ns.Documents {
			t.Rows = append(t.Rows, table.Row{
				columnNSID:      ns.Code,
				"name":          doc.Name,
				"document_type": doc.DocumentType,
				"year":          table.Stringify(doc.Year),
				"url":           doc.URL,
			})
		}
	}
	return t, nil
}

// Process implements dataset.Dataset.
func (d *Documents) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t, err := raw.Select(columnNSID, "name", "document_type", "year", "url")
	if err != nil {
		return nil, err
	}
	if t, err = d.ResolveIdentity(ctx, t, identity.RegistryID, columnNSID, d.policy); err != nil {
		return nil, err
	}

	t = t.DropEmpty("document_type", "year").Drop("name")
	t.Rename(map[string]string{
		"url":           constants.ColumnValue,
		"document_type": constants.ColumnIndicator,
		"year":          constants.ColumnYear,
	})
	t.Map(constants.ColumnIndicator, strings.TrimSpace)
	t.SortBy(table.Asc(constants.ColumnName), table.Asc(constants.ColumnIndicator))

	if t, err = d.RenameIndicators(ctx, t, identity.Raise); err != nil {
		return nil, err
	}
	return d.OrderColumns(t, []string{constants.ColumnIndicator, constants.ColumnValue, constants.ColumnYear}, false)
}
