package dataset

import (
	"context"
	"slices"
	"strings"

	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// Base carries a dataset's catalog entry and registry, and implements the
// normalisation steps shared by loaders. Embed it in a loader.
type Base struct {
	info     catalog.Info
	registry *registry.Cache
}

// NewBase creates a Base for a catalog entry.
func NewBase(info catalog.Info, reg *registry.Cache) Base {
	if reg == nil {
		reg = registry.Default()
	}
	return Base{info: info, registry: reg}
}

// Name implements Dataset.
func (b *Base) Name() string {
	return b.info.Name
}

// Info returns the catalog entry.
func (b *Base) Info() catalog.Info {
	return b.info
}

// Registry returns the registry cache.
func (b *Base) Registry() *registry.Cache {
	return b.registry
}

// Mapper returns an identity mapper that logs through the context logger.
func (b *Base) Mapper(ctx context.Context) (*identity.Mapper, error) {
	reg, err := b.registry.Get()
	if err != nil {
		return nil, err
	}
	return identity.NewMapper(reg, identity.WithLogger(logging.FromContext(ctx))), nil
}

// RenameIndicators renames the Indicator column through the catalog table and
// keeps only renamed indicators. With Raise, declared indicators absent from
// the data are a SchemaMismatchError.
func (b *Base) RenameIndicators(ctx context.Context, t *table.Table, onMissing identity.Policy) (*table.Table, error) {
	renames := b.info.IndicatorRenames()
	present := t.Distinct(constants.ColumnIndicator)

	var missing []string
	for _, src := range b.info.SourceIndicators() {
		if !slices.Contains(present, src) {
			missing = append(missing, src)
		}
	}
	if len(missing) > 0 {
		err := errors.NewSchemaMismatchError(b.info.Name, "indicators", missing, nil)
		switch onMissing {
		case identity.Raise:
			return nil, err
		case identity.Warn:
			logging.FromContext(ctx).Warn().Strs("missing", err.Missing).Msg(err.Error())
		}
	}

	t.Map(constants.ColumnIndicator, func(v string) string {
		if to, ok := renames[v]; ok {
			return to
		}
		return v
	})
	targets := make(map[string]bool, len(renames))
	for _, name := range renames {
		targets[name] = true
	}
	return t.Filter(func(r table.Row) bool {
		return targets[r[constants.ColumnIndicator]]
	}), nil
}

// RenameColumns renames columns through the catalog table. With dropOthers
// only identity columns and renamed columns are kept.
func (b *Base) RenameColumns(t *table.Table, dropOthers bool) *table.Table {
	t.Rename(b.info.ColumnRenames())
	if !dropOthers {
		return t
	}
	keep := append(slices.Clone(constants.IdentityColumns), b.info.ColumnNames()...)
	var drop []string
	for _, c := range t.Columns {
		if !slices.Contains(keep, c) {
			drop = append(drop, c)
		}
	}
	return t.Drop(drop...)
}

// OrderColumns moves the identity columns to the front, followed by other in
// the given order. Remaining columns follow unless dropOthers is set.
func (b *Base) OrderColumns(t *table.Table, other []string, dropOthers bool) (*table.Table, error) {
	return OrderColumns(t, other, dropOthers)
}

// OrderColumns is the function form of Base.OrderColumns.
func OrderColumns(t *table.Table, other []string, dropOthers bool) (*table.Table, error) {
	order := append(slices.Clone(constants.IdentityColumns), other...)
	if !dropOthers {
		for _, c := range t.Columns {
			if !slices.Contains(order, c) {
				order = append(order, c)
			}
		}
	}
	return t.Select(order...)
}

// ResolveIdentity fills the identity tuple from one source column holding
// values of dimension from. Values are cleaned and mapped to canonical names
// and reported according to policy. Rows that do not resolve are dropped. The
// source column is removed unless it is itself an identity column.
func (b *Base) ResolveIdentity(ctx context.Context, t *table.Table, from identity.Dimension, column string, policy identity.Policy) (*table.Table, error) {
	if !t.HasColumn(column) {
		return nil, errors.NewSchemaMismatchError(b.info.Name, "columns", []string{column}, nil)
	}
	m, err := b.Mapper(ctx)
	if err != nil {
		return nil, err
	}

	values := t.Column(column)
	var names []string
	switch from {
	case identity.Name:
		names, err = m.CleanNames(values, policy)
	case identity.Country:
		names, err = m.CountryToName(values, policy)
	default:
		names, err = m.Map(values, from, identity.Name, policy)
	}
	if err != nil {
		return nil, err
	}

	tuple := m.IdentityTuple(names)
	if !slices.Contains(constants.IdentityColumns, column) {
		t.Drop(column)
	}
	for i, r := range t.Rows {
		r[constants.ColumnName] = tuple.Names[i]
		r[constants.ColumnCountry] = tuple.Countries[i]
		r[constants.ColumnISO3] = tuple.ISO3s[i]
		r[constants.ColumnRegion] = tuple.Regions[i]
	}
	for _, c := range constants.IdentityColumns {
		t.AddColumn(c)
	}

	return t.Filter(func(r table.Row) bool {
		return strings.TrimSpace(r[constants.ColumnName]) != ""
	}), nil
}
