// Package dataset defines the contract every dataset loader implements and the
// shared machinery that drives it: pulling raw data, normalising it to the
// canonical identity tuple, keeping the latest values and filtering rows.
//
// A loader implements Dataset and embeds Base for the catalog-driven helpers.
// A Runner drives one loader through pull, process and finalise:
//
//	runner := dataset.NewRunner(ds, info, registry.Default())
//	result, err := runner.GetData(ctx, filters, true)
package dataset

import (
	"context"
	"sort"
	"strings"

	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// Dataset is one source of National Society data.
type Dataset interface {
	// Name is the catalog name of the dataset.
	Name() string
	// Pull reads the raw data from its source. Filters are a hint; sources
	// that cannot apply them return everything.
	Pull(ctx context.Context, filters Filters) (*table.Table, error)
	// Process normalises raw data to the dataset's output shape with the
	// identity columns first.
	Process(ctx context.Context, raw *table.Table) (*table.Table, error)
}

// Latester is implemented by datasets with their own notion of latest data.
type Latester interface {
	Latest(ctx context.Context, data *table.Table) (*table.Table, error)
}

// FilterPusher is implemented by datasets whose Pull applies some filters at
// the source.
type FilterPusher interface {
	PushedFilters() []string
}

// Args are constructor arguments such as api_key, filepath and sheet_name.
type Args map[string]string

// Common argument names.
const (
	ArgAPIKey    = "api_key"
	ArgFilepath  = "filepath"
	ArgSheetName = "sheet_name"
	// ArgOnUnknown overrides a loader's policy for unknown identities.
	ArgOnUnknown = "on_unknown"
)

// Get returns an argument value, matching the name case-insensitively.
func (a Args) Get(name string) string {
	if v, ok := a[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range a {
		if strings.EqualFold(strings.TrimSpace(k), name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Require checks that every named argument is present and non-empty.
func (a Args) Require(dataset string, names ...string) error {
	var missing []string
	for _, n := range names {
		if a.Get(n) == "" {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return errors.NewConfigError(dataset, "missing required arguments: "+strings.Join(missing, ", "), nil)
}

// Policy returns the on_unknown argument, or def when it is not set.
func (a Args) Policy(def identity.Policy) (identity.Policy, error) {
	v := a.Get(ArgOnUnknown)
	if v == "" {
		return def, nil
	}
	return identity.ParsePolicy(v)
}

// Result is the output of one GetData call.
type Result struct {
	Name   string
	Info   catalog.Info
	Data   *table.Table
	Format catalog.Format
	Latest bool
}
