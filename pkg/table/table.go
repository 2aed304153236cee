// Package table provides the ordered, string-valued tabular type that every
// dataset stage exchanges. A missing cell and an empty cell are equivalent and
// both stand for a null value.
package table

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ifrc-nsd/nsdata/pkg/errors"
)

// Row maps column names to cell values.
type Row map[string]string

// Table is an ordered column set with string-valued rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: slices.Clone(columns)}
}

// FromRecords builds a table from a header and positional records.
// Short records are padded with empty cells.
func FromRecords(header []string, records [][]string) *Table {
	t := New(header...)
	for _, rec := range records {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: slices.Clone(t.Columns),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.clone()
	}
	return out
}

func (r Row) clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// AddColumn appends a column if not already present. Existing rows read it as empty.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Append adds a row. Keys not yet in the column set are appended in sorted order.
func (t *Table) Append(row Row) {
	var extra []string
	for k := range row {
		if !t.HasColumn(k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	t.Columns = append(t.Columns, extra...)
	t.Rows = append(t.Rows, row)
}

// Column returns the values of the named column in row order.
func (t *Table) Column(name string) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// SetColumn replaces (or adds) a column with values in row order.
func (t *Table) SetColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return errors.NewValidationError(name, len(values),
			fmt.Sprintf("expected %d values, got %d", len(t.Rows), len(values)))
	}
	t.AddColumn(name)
	for i, r := range t.Rows {
		r[name] = values[i]
	}
	return nil
}

// Map applies fn to every cell of a column.
func (t *Table) Map(column string, fn func(string) string) {
	for _, r := range t.Rows {
		r[column] = fn(r[column])
	}
}

// Rename renames columns in place. Renames are applied simultaneously and
// unknown source columns are ignored.
func (t *Table) Rename(mapping map[string]string) *Table {
	renamed := false
	for i, col := range t.Columns {
		if to, ok := mapping[col]; ok && to != col {
			t.Columns[i] = to
			renamed = true
		}
	}
	if !renamed {
		return t
	}
	t.Columns = dedupe(t.Columns)
	for i, r := range t.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			if _, ok := mapping[k]; !ok {
				nr[k] = v
			}
		}
		for k, v := range r {
			if to, ok := mapping[k]; ok {
				nr[to] = v
			}
		}
		t.Rows[i] = nr
	}
	return t
}

// Drop removes columns in place. Unknown columns are ignored.
func (t *Table) Drop(names ...string) *Table {
	t.Columns = slices.DeleteFunc(t.Columns, func(c string) bool {
		return slices.Contains(names, c)
	})
	for _, r := range t.Rows {
		for _, n := range names {
			delete(r, n)
		}
	}
	return t
}

// Select returns a table restricted to the named columns in the given order.
// Every column must exist.
func (t *Table) Select(names ...string) (*Table, error) {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaMismatchError("table", "columns", missing, nil)
	}
	out := New(names...)
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		row := make(Row, len(names))
		for _, n := range names {
			row[n] = r[n]
		}
		out.Rows[i] = row
	}
	return out, nil
}

// Filter returns a table with the rows for which keep returns true.
// Rows are shared with the receiver.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{Columns: slices.Clone(t.Columns)}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// DropEmpty removes rows with an empty cell in any of the given columns.
func (t *Table) DropEmpty(columns ...string) *Table {
	return t.Filter(func(r Row) bool {
		for _, c := range columns {
			if strings.TrimSpace(r[c]) == "" {
				return false
			}
		}
		return true
	})
}

// DropEmptyRows removes rows whose cells are all empty.
func (t *Table) DropEmptyRows() *Table {
	return t.Filter(func(r Row) bool {
		for _, c := range t.Columns {
			if strings.TrimSpace(r[c]) != "" {
				return true
			}
		}
		return false
	})
}

// DropEmptyColumns removes columns whose cells are all empty.
func (t *Table) DropEmptyColumns() *Table {
	var empty []string
	for _, c := range t.Columns {
		filled := false
		for _, r := range t.Rows {
			if strings.TrimSpace(r[c]) != "" {
				filled = true
				break
			}
		}
		if !filled {
			empty = append(empty, c)
		}
	}
	return t.Drop(empty...)
}

// Distinct returns the distinct non-empty values of a column in first-seen order.
func (t *Table) Distinct(column string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.Rows {
		v := r[column]
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// DedupFirst keeps the first row for each distinct combination of keys.
func (t *Table) DedupFirst(keys ...string) *Table {
	seen := make(map[string]struct{})
	return t.Filter(func(r Row) bool {
		k := r.key(keys)
		if _, ok := seen[k]; ok {
			return false
		}
		seen[k] = struct{}{}
		return true
	})
}

func (r Row) key(keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = r[k]
	}
	return strings.Join(parts, "\x1f")
}

// Concat stacks tables that share the same column set. The result uses the
// column order of the first table.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return New(), nil
	}
	out := New(tables[0].Columns...)
	for _, t := range tables {
		missing, extra := diffColumns(out.Columns, t.Columns)
		if len(missing) > 0 || len(extra) > 0 {
			return nil, errors.NewSchemaMismatchError("concat", "columns", missing, extra)
		}
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out, nil
}

// DiffColumns returns the columns of want absent from got, and those of got absent from want.
func DiffColumns(want, got []string) (missing, extra []string) {
	return diffColumns(want, got)
}

func diffColumns(want, got []string) (missing, extra []string) {
	for _, c := range want {
		if !slices.Contains(got, c) {
			missing = append(missing, c)
		}
	}
	for _, c := range got {
		if !slices.Contains(want, c) {
			extra = append(extra, c)
		}
	}
	return missing, extra
}

// Melt unpivots every non-id column into (varName, valueName) rows.
func (t *Table) Melt(idColumns []string, varName, valueName string) *Table {
	out := New(append(slices.Clone(idColumns), varName, valueName)...)
	for _, col := range t.Columns {
		if slices.Contains(idColumns, col) {
			continue
		}
		for _, r := range t.Rows {
			row := make(Row, len(idColumns)+2)
			for _, id := range idColumns {
				row[id] = r[id]
			}
			row[varName] = col
			row[valueName] = r[col]
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Transpose turns each non-key column into a row whose columns are the values
// of keyColumn. Rows with an empty key are skipped; duplicate keys keep the
// first occurrence.
func (t *Table) Transpose(keyColumn string) *Table {
	var header []string
	var keyRows []Row
	for _, r := range t.Rows {
		k := strings.TrimSpace(r[keyColumn])
		if k == "" || slices.Contains(header, k) {
			continue
		}
		header = append(header, k)
		keyRows = append(keyRows, r)
	}
	out := New(header...)
	for _, col := range t.Columns {
		if col == keyColumn {
			continue
		}
		row := make(Row, len(header))
		for i, k := range header {
			row[k] = keyRows[i][col]
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// GroupJoin collapses rows sharing the key columns into one row, joining the
// other columns' values with sep. Groups keep first-seen order.
func (t *Table) GroupJoin(keys []string, sep string) *Table {
	out := New(t.Columns...)
	index := make(map[string]Row)
	values := make(map[string]map[string][]string)
	for _, r := range t.Rows {
		k := r.key(keys)
		g, ok := index[k]
		if !ok {
			g = make(Row, len(t.Columns))
			for _, key := range keys {
				g[key] = r[key]
			}
			index[k] = g
			values[k] = make(map[string][]string)
			out.Rows = append(out.Rows, g)
		}
		for _, c := range t.Columns {
			if slices.Contains(keys, c) {
				continue
			}
			values[k][c] = append(values[k][c], r[c])
		}
	}
	for k, g := range index {
		for c, vs := range values[k] {
			g[c] = strings.Join(vs, sep)
		}
	}
	return out
}

func dedupe(cols []string) []string {
	seen := make(map[string]struct{}, len(cols))
	out := cols[:0]
	for _, c := range cols {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
