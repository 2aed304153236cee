package databank

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/resolver"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// FDRSName is the catalog name of the FDRS dataset.
const FDRSName = "FDRS"

const columnNSID = "National Society ID"

// Indicators whose boolean answers become Yes/No, with the derived
// "Year of latest" indicator for each.
var documentIndicators = map[string]string{
	"KPI_hasFinancialStatement": "Year of latest financial statement",
	"audited":                   "Year of latest audited financial statement",
	"ar":                        "Year of latest annual report",
	"sp":                        "Year of latest strategic plan",
}

// Indicators holding lists of National Society IDs.
var supportIndicators = []string{"supported1", "received_support1"}

var (
	ignoredSupportIDs = []string{"IFRC", "DBE004"}
	renamedSupportIDs = map[string]string{"DCS001": "DRS001"}
)

// Free text answers replaced by the National Society they name.
var valueReplacements = map[string]string{
	"One of our staff was sent for support to DRC-Congo on a surge": "Red Cross of the Democratic Republic of the Congo",
}

func init() {
	factory.Register(factory.Spec{
		Name:     FDRSName,
		Required: []string{dataset.ArgAPIKey},
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return NewFDRS(info, args, deps)
		},
	})
}

// FDRS loads Federation-wide Databank and Reporting System indicators.
type FDRS struct {
	dataset.Base
	endpoint
	resolver *resolver.Resolver
	policy   identity.Policy
}

// NewFDRS creates the FDRS loader.
func NewFDRS(info catalog.Info, args dataset.Args, deps factory.Deps) (*FDRS, error) {
	policy, err := args.Policy(identity.Warn)
	if err != nil {
		return nil, err
	}
	ep := newEndpoint(args, deps)
	return &FDRS{
		Base:     dataset.NewBase(info, deps.Registry),
		endpoint: ep,
		resolver: deps.ResolverFor(ep.apiKey),
		policy:   policy,
	}, nil
}

type fdrsResponse struct {
	Data []struct {
		ID    string          `json:"id"`
		Years json.RawMessage `json:"years"`
		Data  []struct {
			ID   string `json:"id"`
			Data []struct {
				Year  any `json:"year"`
				Value any `json:"value"`
			} `json:"data"`
		} `json:"data"`
	} `json:"data"`
}

// Pull reads every indicator for every National Society and unnests the
// response into one row per (indicator, NS ID, year).
func (d *FDRS) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	var resp fdrsResponse
	if err := d.client.GetJSON(ctx, d.url("/api/Data"), &resp); err != nil {
		return nil, err
	}

	years := make(map[string]struct{})
	t := table.New(constants.ColumnIndicator, columnNSID, "year", "value")
	for _, indicator := range resp.Data {
		years[strings.TrimSpace(string(indicator.Years))] = struct{}{}
		for _, ns := range indicator.Data {
			for _, point := range ns.Data {
				t.Rows = append(t.Rows, table.Row{
					constants.ColumnIndicator: indicator.ID,
					columnNSID:                ns.ID,
					"year":                    table.Stringify(point.Year),
					"value":                   table.Stringify(point.Value),
				})
			}
		}
	}
	if len(years) > 1 {
		distinct := make([]string, 0, len(years))
		for y := range years {
			distinct = append(distinct, y)
		}
		slices.Sort(distinct)
		return nil, errors.NewValidationError("years", distinct, "unexpected values in years")
	}

	logging.FromContext(ctx).Debug().Int("rows", t.Len()).Msg("Pulled FDRS data")
	return t, nil
}

// Process implements dataset.Dataset.
func (d *FDRS) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone().Rename(map[string]string{"value": constants.ColumnValue, "year": constants.ColumnYear})
	t = t.DropEmpty(constants.ColumnValue, constants.ColumnYear, constants.ColumnIndicator)

	t.AddColumn(constants.ColumnURL)
	for _, r := range t.Rows {
		r[constants.ColumnURL] = constants.FDRSNationalSocietyURL + r[columnNSID]
		if to, ok := valueReplacements[r[constants.ColumnValue]]; ok {
			r[constants.ColumnValue] = to
		}
	}

	if err := d.resolveSupport(ctx, t); err != nil {
		return nil, err
	}

	for _, r := range t.Rows {
		if _, ok := documentIndicators[r[constants.ColumnIndicator]]; !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(r[constants.ColumnValue])) {
		case "true":
			r[constants.ColumnValue] = "Yes"
		case "false":
			r[constants.ColumnValue] = "No"
		}
	}
	t.Rows = append(t.Rows, latestDocumentYears(t)...)

	t, err := d.ResolveIdentity(ctx, t, identity.RegistryID, columnNSID, d.policy)
	if err != nil {
		return nil, err
	}
	if t, err = d.RenameIndicators(ctx, t, identity.Ignore); err != nil {
		return nil, err
	}
	return d.OrderColumns(t, []string{
		constants.ColumnIndicator, constants.ColumnValue, constants.ColumnYear, constants.ColumnURL,
	}, false)
}

// latestDocumentYears derives, per National Society and document indicator,
// the latest year answered Yes.
func latestDocumentYears(t *table.Table) []table.Row {
	yes := t.Filter(func(r table.Row) bool {
		_, ok := documentIndicators[r[constants.ColumnIndicator]]
		return ok && r[constants.ColumnValue] == "Yes"
	}).Clone()
	yes.SortBy(table.Asc(columnNSID), table.Desc(constants.ColumnYear))
	yes = yes.DedupFirst(columnNSID, constants.ColumnIndicator)

	rows := make([]table.Row, 0, yes.Len())
	for _, r := range yes.Rows {
		r[constants.ColumnIndicator] = documentIndicators[r[constants.ColumnIndicator]]
		r[constants.ColumnValue] = r[constants.ColumnYear]
		rows = append(rows, r)
	}
	return rows
}

// resolveSupport replaces the ID lists of the support indicators with
// National Society names. All IDs go through the resolver in one call.
func (d *FDRS) resolveSupport(ctx context.Context, t *table.Table) error {
	type span struct {
		row        table.Row
		start, end int
	}
	var (
		ids   []string
		spans []span
	)
	for _, r := range t.Rows {
		if !slices.Contains(supportIndicators, r[constants.ColumnIndicator]) {
			continue
		}
		parsed := splitSupportIDs(r[constants.ColumnValue])
		spans = append(spans, span{row: r, start: len(ids), end: len(ids) + len(parsed)})
		ids = append(ids, parsed...)
	}
	if len(spans) == 0 {
		return nil
	}

	var names []string
	if len(ids) > 0 {
		var err error
		names, err = d.resolver.Resolve(ctx, ids, resolver.CleanNames())
		if err != nil {
			return err
		}
	}
	for _, s := range spans {
		s.row[constants.ColumnValue] = strings.Join(names[s.start:s.end], ", ")
	}
	return nil
}

func splitSupportIDs(value string) []string {
	var ids []string
	for _, item := range strings.Split(strings.ReplaceAll(value, ";", ","), ",") {
		item = strings.TrimSpace(item)
		if item == "" || slices.Contains(ignoredSupportIDs, item) {
			continue
		}
		if to, ok := renamedSupportIDs[item]; ok {
			item = to
		}
		ids = append(ids, item)
	}
	return ids
}
