package dataset

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// Filters restrict rows by identity column. Keys are ISO3, Country and
// National Society name.
type Filters map[string][]string

// FilterKeys are the accepted filter keys.
var FilterKeys = []string{constants.ColumnISO3, constants.ColumnCountry, constants.ColumnName}

// ParseFilters normalises a loosely-typed filter map. A single string becomes a
// one-element list. Unknown keys are rejected.
func ParseFilters(raw map[string]any) (Filters, error) {
	f := make(Filters, len(raw))
	for key, val := range raw {
		if !slices.Contains(FilterKeys, key) {
			return nil, errors.NewValidationError("filters", key,
				fmt.Sprintf("unknown filter; choose from %v", FilterKeys))
		}
		switch v := val.(type) {
		case nil:
		case string:
			f[key] = []string{v}
		case []string:
			f[key] = slices.Clone(v)
		case []any:
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, errors.NewValidationError(key, item, "filter values must be strings")
				}
				f[key] = append(f[key], s)
			}
		default:
			return nil, errors.NewValidationError(key, val, "filter must be a string or a list of strings")
		}
	}
	return f, nil
}

// Keys returns the filter keys in use, sorted.
func (f Filters) Keys() []string {
	keys := make([]string, 0, len(f))
	for k, v := range f {
		if len(v) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Empty reports whether no filter values are set.
func (f Filters) Empty() bool {
	return len(f.Keys()) == 0
}

// ValidateFilters checks every filter value against the registry.
func ValidateFilters(reg *registry.Registry, f Filters) error {
	allowed := map[string][]string{
		constants.ColumnISO3:    reg.ISO3s(),
		constants.ColumnCountry: reg.Countries(),
		constants.ColumnName:    reg.Names(),
	}
	for _, key := range f.Keys() {
		known, ok := allowed[key]
		if !ok {
			return errors.NewValidationError("filters", key,
				fmt.Sprintf("unknown filter; choose from %v", FilterKeys))
		}
		var unknown []string
		for _, v := range f[key] {
			if !slices.Contains(known, v) {
				unknown = append(unknown, v)
			}
		}
		if len(unknown) > 0 {
			return errors.NewValidationError(key, unknown,
				fmt.Sprintf("unrecognised values %q; the allowed values are: %s",
					unknown, strings.Join(known, ", ")))
		}
	}
	return nil
}

// Apply keeps the rows whose value in every filtered column is one of the
// filter values.
func (f Filters) Apply(t *table.Table) *table.Table {
	keys := f.Keys()
	if len(keys) == 0 {
		return t
	}
	return t.Filter(func(r table.Row) bool {
		for _, k := range keys {
			if !slices.Contains(f[k], r[k]) {
				return false
			}
		}
		return true
	})
}
