// Package sheets loads the datasets that IFRC teams maintain as spreadsheets:
// youth engagement, recognition laws, statutes and logistics projects. Each
// is read from a CSV file or an Excel sheet given by the filepath and
// sheet_name arguments and is keyed by country.
package sheets

import (
	"context"
	"strings"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// The column most of these sheets use for the country.
const columnNationalSociety = "National Society (NS)"

type sheet struct {
	dataset.Base
	source *dataset.FileSource
	policy identity.Policy
}

func newSheet(info catalog.Info, args dataset.Args, deps factory.Deps) (sheet, error) {
	src, err := dataset.NewFileSource(args.Get(dataset.ArgFilepath), args.Get(dataset.ArgSheetName))
	if err != nil {
		return sheet{}, err
	}
	policy, err := args.Policy(identity.Warn)
	if err != nil {
		return sheet{}, err
	}
	return sheet{
		Base:   dataset.NewBase(info, deps.Registry),
		source: src,
		policy: policy,
	}, nil
}

func register(name string, build func(sheet) dataset.Dataset) {
	factory.Register(factory.Spec{
		Name:     name,
		Required: []string{dataset.ArgFilepath},
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			s, err := newSheet(info, args, deps)
			if err != nil {
				return nil, err
			}
			return build(s), nil
		},
	})
}

// read returns the sheet with the header taken from headerRow and data
// starting at firstDataRow, both zero-based file rows.
func (s *sheet) read(ctx context.Context, headerRow, firstDataRow int) (*table.Table, error) {
	rows, err := s.source.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.HeaderTable(rows, headerRow, firstDataRow)
}

// byCountry fills the identity tuple from the Country column, applies the
// catalog column renames and orders the columns.
func (s *sheet) byCountry(ctx context.Context, t *table.Table, dropOthers bool) (*table.Table, error) {
	t.Map(constants.ColumnCountry, strings.TrimSpace)
	t, err := s.ResolveIdentity(ctx, t, identity.Country, constants.ColumnCountry, s.policy)
	if err != nil {
		return nil, err
	}
	t = s.RenameColumns(t, dropOthers)
	return s.OrderColumns(t, s.Info().ColumnNames(), dropOthers)
}
