package ifrcgo

import (
	"context"
	"math"
	"strconv"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// OperationsName is the catalog name of the GO Operations dataset.
const OperationsName = "GO Operations"

const (
	columnSocietyName = "country.society_name"
	columnStatus      = "status_display"
	statusActive      = "Active"
	// Operations of one National Society are joined into one cell per column.
	operationSeparator = "\n"
)

func init() {
	factory.Register(factory.Spec{
		Name: OperationsName,
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return NewOperations(info, args, deps)
		},
	})
}

// Operations lists the active emergency appeals in each National Society's country.
type Operations struct {
	dataset.Base
	api
	policy identity.Policy
}

// NewOperations creates the GO Operations loader.
func NewOperations(info catalog.Info, args dataset.Args, deps factory.Deps) (*Operations, error) {
	policy, err := args.Policy(identity.Warn)
	if err != nil {
		return nil, err
	}
	return &Operations{
		Base:   dataset.NewBase(info, deps.Registry),
		api:    newAPI(deps),
		policy: policy,
	}, nil
}

// Pull implements dataset.Dataset.
func (d *Operations) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	results, err := d.results(ctx, "/api/v2/appeal/")
	if err != nil {
		return nil, err
	}
	return table.FromObjects(results), nil
}

// Process keeps active appeals, computes the funding percentage, and joins
// the appeals of each National Society into a single row.
func (d *Operations) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone().DropEmpty(columnSocietyName)
	formatDates(t, "start_date", "end_date")

	t, err := d.ResolveIdentity(ctx, t, identity.Name, columnSocietyName, d.policy)
	if err != nil {
		return nil, err
	}

	t = t.Filter(func(r table.Row) bool { return r[columnStatus] == statusActive })
	t.AddColumn("funding")
	for _, r := range t.Rows {
		r["funding"] = fundingPercent(r["amount_funded"], r["amount_requested"])
	}

	t.SortBy(table.Desc("created_at"))
	t = t.DedupFirst(constants.ColumnName, "name")
	t = d.RenameColumns(t, true)
	t = t.GroupJoin(constants.IdentityColumns, operationSeparator)
	return d.OrderColumns(t, d.Info().ColumnNames(), false)
}

// fundingPercent returns funded as a whole percentage of requested.
func fundingPercent(funded, requested string) string {
	f, ok := table.ParseNumber(funded)
	if !ok {
		return ""
	}
	r, ok := table.ParseNumber(requested)
	if !ok || r == 0 {
		return ""
	}
	return strconv.FormatFloat(math.Round(100*f/r), 'f', -1, 64)
}
