package sheets

import (
	"context"

	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// YABCName is the catalog name of the Youth as Agents of Behavioural Change dataset.
const YABCName = "YABC"

func init() {
	register(YABCName, func(s sheet) dataset.Dataset { return &YABC{sheet: s} })
}

// YABC counts the Youth as Agents of Behavioural Change trainings, peer
// educators and trainers of each National Society. The sheet has two title
// rows above the header and a blank first column.
type YABC struct {
	sheet
}

// Pull implements dataset.Dataset.
func (d *YABC) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	t, err := d.read(ctx, 2, 3)
	if err != nil {
		return nil, err
	}
	if len(t.Columns) > 0 {
		t.Drop(t.Columns[0])
	}
	return t, nil
}

// Process implements dataset.Dataset.
func (d *YABC) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone().DropEmptyRows().DropEmptyColumns()
	t = t.Filter(func(r table.Row) bool { return r[constants.ColumnCountry] != "TOTAL" })
	return d.byCountry(ctx, t, true)
}
