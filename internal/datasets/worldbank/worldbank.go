// Package worldbank loads World Development Indicators from the World Bank
// v2 API.
package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/internal/transport"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// Name is the catalog name of the dataset.
const Name = "World Development Indicators"

// WDI is source 2 of the World Bank API.
const wdiSource = 2

func init() {
	factory.Register(factory.Spec{
		Name: Name,
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return New(info, args, deps)
		},
	})
}

// Indicators loads every catalog indicator for all countries.
type Indicators struct {
	dataset.Base
	client  *transport.Client
	baseURL string
	perPage int
	policy  identity.Policy
}

// New creates the World Development Indicators loader. The API also reports
// regional and income-group aggregates, so unknown ISO3 codes are ignored
// unless on_unknown says otherwise.
func New(info catalog.Info, args dataset.Args, deps factory.Deps) (*Indicators, error) {
	policy, err := args.Policy(identity.Ignore)
	if err != nil {
		return nil, err
	}
	return &Indicators{
		Base: dataset.NewBase(info, deps.Registry),
		client: deps.Client("worldbank",
			transport.WithRateLimit(constants.DefaultRateLimit, constants.BurstSize)),
		baseURL: deps.URL(constants.WorldBankURL),
		perPage: constants.MaxPageSize,
		policy:  policy,
	}, nil
}

type pageInfo struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

// Pull requests pages until the last one reported by the API.
func (d *Indicators) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	indicators := strings.Join(d.Info().SourceIndicators(), ";")

	var records []map[string]any
	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/country/all/indicator/%s?source=%d&page=%d&format=json&per_page=%d",
			d.baseURL, indicators, wdiSource, page, d.perPage)

		var body []json.RawMessage
		if err := d.client.GetJSON(ctx, endpoint, &body); err != nil {
			return nil, err
		}
		if len(body) < 2 {
			// Errors come back as a one-element array holding a message.
			return nil, errors.NewParseError("json", endpoint, "unexpected World Bank response: "+string(joinRaw(body)), nil)
		}

		var info pageInfo
		if err := json.Unmarshal(body[0], &info); err != nil {
			return nil, errors.WrapParse("json", endpoint, err)
		}
		var batch []map[string]any
		if err := json.Unmarshal(body[1], &batch); err != nil {
			return nil, errors.WrapParse("json", endpoint, err)
		}
		records = append(records, batch...)

		logging.FromContext(ctx).Debug().Int("page", page).Int("pages", info.Pages).Msg("Fetched World Bank page")
		if page >= info.Pages {
			break
		}
	}
	return table.FromObjects(records), nil
}

func joinRaw(body []json.RawMessage) []byte {
	b, _ := json.Marshal(body)
	return b
}

// Process implements dataset.Dataset.
func (d *Indicators) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone().DropEmpty("countryiso3code", "value", "date")
	t, err := d.ResolveIdentity(ctx, t, identity.ISO3, "countryiso3code", d.policy)
	if err != nil {
		return nil, err
	}
	t.Rename(map[string]string{
		"date":         constants.ColumnYear,
		"indicator.id": constants.ColumnIndicator,
		"value":        constants.ColumnValue,
	})
	if t, err = d.RenameIndicators(ctx, t, identity.Raise); err != nil {
		return nil, err
	}
	return d.OrderColumns(t, []string{constants.ColumnIndicator, constants.ColumnValue, constants.ColumnYear}, true)
}
