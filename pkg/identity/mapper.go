package identity

import (
	"strings"

	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
)

// Mapper translates values between registry dimensions. It embeds a Cleaner
// for the composite clean-then-map operations.
type Mapper struct {
	*Cleaner
	reg *registry.Registry
}

// NewMapper creates a mapper over a registry snapshot.
func NewMapper(reg *registry.Registry, opts ...Option) *Mapper {
	return &Mapper{
		Cleaner: NewCleaner(reg, opts...),
		reg:     reg,
	}
}

func (m *Mapper) lookup(from, to Dimension) (map[string]string, error) {
	if !from.Valid() {
		return nil, errors.NewValidationError("from", from, "unknown dimension")
	}
	if !to.Valid() {
		return nil, errors.NewValidationError("to", to, "unknown dimension")
	}
	table := make(map[string]string, m.reg.Len())
	for _, rec := range m.reg.Records() {
		if key := from.value(rec); key != "" {
			table[strings.ToLower(key)] = to.value(rec)
		}
	}
	return table, nil
}

// Map converts values from one dimension to another. Unknown values are left
// unchanged and reported according to policy. Empty values stay empty.
func (m *Mapper) Map(values []string, from, to Dimension, policy Policy) ([]string, error) {
	return m.mapValues(values, from, to, policy, true)
}

// MapColumn is like Map but returns an empty cell for unknown values so the
// row can be dropped by the caller.
func (m *Mapper) MapColumn(values []string, from, to Dimension, policy Policy) ([]string, error) {
	return m.mapValues(values, from, to, policy, false)
}

func (m *Mapper) mapValues(values []string, from, to Dimension, policy Policy, keepUnknown bool) ([]string, error) {
	table, err := m.lookup(from, to)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(values))
	var unknown []string
	for i, v := range values {
		key := strings.TrimSpace(v)
		if key == "" {
			continue
		}
		if mapped, ok := table[strings.ToLower(key)]; ok {
			out[i] = mapped
			continue
		}
		unknown = append(unknown, key)
		if keepUnknown {
			out[i] = v
		}
	}

	return out, m.report(policy, from, to, unknown)
}

// ISO3ToName maps ISO3 codes to National Society names.
func (m *Mapper) ISO3ToName(values []string, policy Policy) ([]string, error) {
	return m.Map(values, ISO3, Name, policy)
}

// RegistryIDToName maps National Society IDs to names.
func (m *Mapper) RegistryIDToName(values []string, policy Policy) ([]string, error) {
	return m.Map(values, RegistryID, Name, policy)
}

// NameToRegistryID cleans names and maps them to National Society IDs.
func (m *Mapper) NameToRegistryID(values []string, policy Policy) ([]string, error) {
	cleaned, err := m.Clean(values, Name, Ignore)
	if err != nil {
		return nil, err
	}
	return m.Map(cleaned, Name, RegistryID, policy)
}

// CountryToName cleans country names and maps them to National Society names.
func (m *Mapper) CountryToName(values []string, policy Policy) ([]string, error) {
	cleaned, err := m.Clean(values, Country, Ignore)
	if err != nil {
		return nil, err
	}
	return m.Map(cleaned, Country, Name, policy)
}

// Tuple is the identity columns projected from canonical names.
type Tuple struct {
	Names     []string
	Countries []string
	ISO3s     []string
	Regions   []string
}

// IdentityTuple projects canonical names onto the identity columns. A name
// absent from the registry yields four empty cells.
func (m *Mapper) IdentityTuple(names []string) Tuple {
	t := Tuple{
		Names:     make([]string, len(names)),
		Countries: make([]string, len(names)),
		ISO3s:     make([]string, len(names)),
		Regions:   make([]string, len(names)),
	}
	for i, name := range names {
		rec, ok := m.reg.Lookup(name)
		if !ok {
			continue
		}
		t.Names[i] = rec.Name
		t.Countries[i] = rec.Country
		t.ISO3s[i] = rec.ISO3
		t.Regions[i] = rec.Region
	}
	return t
}
