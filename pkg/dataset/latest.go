package dataset

import (
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// FilterLatest keeps the most recent row per National Society and indicator.
// Ties within a year keep the smallest value. The result is ordered by
// National Society name then indicator.
func FilterLatest(t *table.Table) *table.Table {
	out := t.Clone()
	out.SortBy(table.Desc(constants.ColumnYear), table.Asc(constants.ColumnValue))
	out = out.DedupFirst(constants.ColumnName, constants.ColumnIndicator)
	return out.SortBy(table.Asc(constants.ColumnName), table.Asc(constants.ColumnIndicator))
}
