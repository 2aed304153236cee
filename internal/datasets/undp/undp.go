// Package undp loads the Human Development Index from the UNDP Human
// Development Report Office API.
package undp

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
const Name = "UNDP Human Development"

// hdiIndicator is the HDRO identifier of the Human Development Index.
const hdiIndicator = "137506"

func init() {
	factory.Register(factory.Spec{
		Name: Name,
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return New(info, args, deps)
		},
	})
}

// HumanDevelopment loads the HDI time series of every country.
type HumanDevelopment struct {
	dataset.Base
	client  *transport.Client
	baseURL string
	policy  identity.Policy
}

// New creates the UNDP Human Development loader.
func New(info catalog.Info, args dataset.Args, deps factory.Deps) (*HumanDevelopment, error) {
	policy, err := args.Policy(identity.Warn)
	if err != nil {
		return nil, err
	}
	return &HumanDevelopment{
		Base:    dataset.NewBase(info, deps.Registry),
		client:  deps.Client("undp"),
		baseURL: deps.URL(constants.UNDPURL),
		policy:  policy,
	}, nil
}

// response nests values as iso3 -> indicator -> year -> value.
type response struct {
	IndicatorValue map[string]map[string]map[string]any `json:"indicator_value"`
}

// Pull implements dataset.Dataset.
func (d *HumanDevelopment) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	var resp response
	if err := d.client.GetJSON(ctx, d.baseURL+"/indicator_id="+hdiIndicator, &resp); err != nil {
		return nil, err
	}

	t := table.New("iso3", constants.ColumnIndicator, constants.ColumnYear, constants.ColumnValue)
	for _, iso3 := range sortedKeys(resp.IndicatorValue) {
		byIndicator := resp.IndicatorValue[iso3]
		for _, indicator := range sortedKeys(byIndicator) {
			byYear := byIndicator[indicator]
			for _, year := range sortedKeys(byYear) {
				t.Rows = append(t.Rows, table.Row{
					"iso3":                    iso3,
					constants.ColumnIndicator: indicator,
					constants.ColumnYear:      year,
					constants.ColumnValue:     table.Stringify(byYear[year]),
				})
			}
		}
	}
	return t, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Process implements dataset.Dataset.
func (d *HumanDevelopment) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone().DropEmpty(constants.ColumnValue)
	t, err := d.ResolveIdentity(ctx, t, identity.ISO3, "iso3", d.policy)
	if err != nil {
		return nil, err
	}
	if t, err = d.RenameIndicators(ctx, t, identity.Raise); err != nil {
		return nil, err
	}
	return d.OrderColumns(t, []string{constants.ColumnIndicator, constants.ColumnValue, constants.ColumnYear}, true)
}
