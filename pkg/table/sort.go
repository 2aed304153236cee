package table

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// SortKey orders rows by one column.
type SortKey struct {
	Column string
	Desc   bool
}

// Asc sorts a column ascending.
func Asc(column string) SortKey { return SortKey{Column: column} }

// Desc sorts a column descending.
func Desc(column string) SortKey { return SortKey{Column: column, Desc: true} }

// SortBy stably sorts rows in place by the given keys. Empty cells sort last
// in either direction; two numeric cells compare numerically, anything else
// compares as text.
func (t *Table) SortBy(keys ...SortKey) *Table {
	slices.SortStableFunc(t.Rows, func(a, b Row) int {
		for _, k := range keys {
			if c := compareCells(a[k.Column], b[k.Column], k.Desc); c != 0 {
				return c
			}
		}
		return 0
	})
	return t
}

func compareCells(a, b string, desc bool) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	c := CompareValues(a, b)
	if desc {
		return -c
	}
	return c
}

// CompareValues compares two non-empty cell values. Numbers sort before
// text; numbers compare numerically and text lexically, so the order is
// total and sorting never depends on input order.
func CompareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if c := cmp.Compare(fa, fb); c != 0 {
			return c
		}
		// "1" and "1.0" are equal numbers; text keeps them apart.
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// ParseNumber reports whether a cell holds a number and returns it.
func ParseNumber(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
