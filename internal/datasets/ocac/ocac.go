// Package ocac loads Organisational Capacity Assessment and Certification
// results exported from the OCAC back office. The export has one row per
// question and one column per assessment.
package ocac

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// Catalog names.
const (
	Name      = "OCAC"
	DatesName = "OCAC Assessment Dates"
)

const (
	columnCode            = "Code"
	columnQuestion        = "Name"
	columnNationalSociety = "National Society"

	dateIndicator = "OCAC assessment date"
)

// Rows of the export that describe the assessment process rather than results.
var administrativeRows = []string{
	"iso", "Region", "SubRegion", "Month", "Version",
	"Principal facilitator", "Second facilitator", "NS Focal point",
	"OCAC data public", "OCAC report public",
}

func init() {
	factory.Register(factory.Spec{
		Name:     Name,
		Required: []string{dataset.ArgFilepath},
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return New(info, args, deps)
		},
	})
	factory.Register(factory.Spec{
		Name:     DatesName,
		Required: []string{dataset.ArgFilepath},
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return NewDates(info, args, deps)
		},
	})
}

// Assessments has one row per OCAC assessment with a column per question.
type Assessments struct {
	dataset.Base
	source *dataset.FileSource
	policy identity.Policy
}

// New creates the OCAC loader.
func New(info catalog.Info, args dataset.Args, deps factory.Deps) (*Assessments, error) {
	src, err := dataset.NewFileSource(args.Get(dataset.ArgFilepath), args.Get(dataset.ArgSheetName))
	if err != nil {
		return nil, err
	}
	policy, err := args.Policy(identity.Warn)
	if err != nil {
		return nil, err
	}
	return &Assessments{Base: dataset.NewBase(info, deps.Registry), source: src, policy: policy}, nil
}

// Pull implements dataset.Dataset.
func (d *Assessments) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	return d.source.Table(ctx)
}

// Process implements dataset.Dataset.
func (d *Assessments) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	for _, c := range []string{columnCode, columnQuestion} {
		if !raw.HasColumn(c) {
			return nil, errors.NewSchemaMismatchError(d.Name(), "columns", []string{c}, nil)
		}
	}

	t := raw.Clone()
	t.AddColumn(constants.ColumnIndicator)
	for _, r := range t.Rows {
		ind := r[columnQuestion]
		if strings.TrimSpace(ind) == "" {
			ind = r[columnCode]
		}
		r[constants.ColumnIndicator] = strings.TrimSpace(ind)
	}
	t.Drop(columnCode, columnQuestion)
	t = t.Filter(func(r table.Row) bool {
		for _, c := range t.Columns {
			if c != constants.ColumnIndicator && strings.TrimSpace(r[c]) != "" {
				return true
			}
		}
		return false
	})

	t = t.Transpose(constants.ColumnIndicator).Drop(administrativeRows...)
	t, err := d.ResolveIdentity(ctx, t, identity.Name, columnNationalSociety, d.policy)
	if err != nil {
		return nil, err
	}
	if !t.HasColumn(constants.ColumnYear) {
		return nil, errors.NewSchemaMismatchError(d.Name(), "columns", []string{constants.ColumnYear}, nil)
	}
	for _, r := range t.Rows {
		year, err := integralYear(r[constants.ColumnYear])
		if err != nil {
			return nil, errors.NewValidationError(constants.ColumnYear, r[constants.ColumnYear], err.Error())
		}
		r[constants.ColumnYear] = year
	}
	return d.OrderColumns(t, nil, false)
}

// Latest keeps the newest assessment of each National Society.
func (d *Assessments) Latest(_ context.Context, data *table.Table) (*table.Table, error) {
	out := data.Clone().SortBy(table.Asc(constants.ColumnName), table.Desc(constants.ColumnYear))
	return out.DedupFirst(constants.ColumnName), nil
}

// integralYear accepts years written as integers or as whole floats, which is
// how spreadsheets often store them.
func integralYear(v string) (string, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return "", fmt.Errorf("year is not numeric")
	}
	if f != math.Trunc(f) {
		return "", fmt.Errorf("year is not a whole number")
	}
	return strconv.FormatInt(int64(f), 10), nil
}

// Dates reports the year of each OCAC assessment as an indicator.
type Dates struct {
	*Assessments
}

// NewDates creates the OCAC Assessment Dates loader.
func NewDates(info catalog.Info, args dataset.Args, deps factory.Deps) (*Dates, error) {
	a, err := New(info, args, deps)
	if err != nil {
		return nil, err
	}
	return &Dates{Assessments: a}, nil
}

// Process implements dataset.Dataset.
func (d *Dates) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	assessments, err := d.Assessments.Process(ctx, raw)
	if err != nil {
		return nil, err
	}
	t, err := assessments.Select(slices.Concat(constants.IdentityColumns, []string{constants.ColumnYear})...)
	if err != nil {
		return nil, err
	}
	t.Rename(map[string]string{constants.ColumnYear: constants.ColumnValue})
	t.AddColumn(constants.ColumnIndicator)
	t.AddColumn(constants.ColumnYear)
	for _, r := range t.Rows {
		r[constants.ColumnIndicator] = dateIndicator
		r[constants.ColumnYear] = ""
	}
	t, err = d.RenameIndicators(ctx, t, identity.Raise)
	if err != nil {
		return nil, err
	}
	return d.OrderColumns(t, []string{constants.ColumnIndicator, constants.ColumnValue, constants.ColumnYear}, true)
}

// Latest keeps the most recent assessment date of each National Society.
func (d *Dates) Latest(_ context.Context, data *table.Table) (*table.Table, error) {
	out := data.Clone().SortBy(table.Asc(constants.ColumnName), table.Desc(constants.ColumnValue))
	return out.DedupFirst(constants.ColumnName), nil
}
