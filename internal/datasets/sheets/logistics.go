package sheets

import (
	"context"

	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// LogisticsName is the catalog name of the logistics projects dataset.
const LogisticsName = "Logistics Projects"

func init() {
	register(LogisticsName, func(s sheet) dataset.Dataset { return &Logistics{sheet: s} })
}

// Logistics lists logistics projects run with National Societies.
type Logistics struct {
	sheet
}

// Pull implements dataset.Dataset.
func (d *Logistics) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	return d.read(ctx, 0, 1)
}

// Process implements dataset.Dataset. The sheet's own Region column is
// replaced by the registry region.
func (d *Logistics) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone().Drop(constants.ColumnRegion).DropEmptyRows()
	return d.byCountry(ctx, t, false)
}
