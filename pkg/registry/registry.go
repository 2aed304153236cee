package registry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ifrc-nsd/nsdata/pkg/errors"
)

// Registry is an immutable snapshot of the canonical entity records.
type Registry struct {
	records []EntityRecord
	byName  map[string]int
}

// New validates records and builds a registry snapshot.
func New(records []EntityRecord) (*Registry, error) {
	recs := make([]EntityRecord, len(records))
	for i, r := range records {
		r.AlternateNames = slices.Clone(r.AlternateNames)
		r.AlternateCountryNames = slices.Clone(r.AlternateCountryNames)
		r.normalize()
		recs[i] = r
	}
	if err := validate(recs); err != nil {
		return nil, err
	}

	reg := &Registry{
		records: recs,
		byName:  make(map[string]int, len(recs)),
	}
	for i, r := range recs {
		reg.byName[r.Name] = i
	}
	return reg, nil
}

func validate(records []EntityRecord) error {
	var problems []string
	names := make(map[string]string)
	countries := make(map[string]string)
	iso3s := make(map[string]string)
	ids := make(map[string]string)

	claim := func(index map[string]string, kind, key, owner string) {
		if key == "" {
			return
		}
		k := strings.ToLower(key)
		if prev, ok := index[k]; ok && prev != owner {
			problems = append(problems, fmt.Sprintf("%s %q used by both %q and %q", kind, key, prev, owner))
			return
		}
		index[k] = owner
	}

	for i, r := range records {
		if r.Name == "" {
			problems = append(problems, fmt.Sprintf("record %d has no National Society name", i))
			continue
		}
		if _, dup := names[strings.ToLower(r.Name)]; dup {
			problems = append(problems, fmt.Sprintf("duplicate National Society name %q", r.Name))
			continue
		}
		claim(names, "name", r.Name, r.Name)
		for _, alt := range r.AlternateNames {
			claim(names, "alternative name", alt, r.Name)
		}
		claim(countries, "country", r.Country, r.Name)
		for _, alt := range r.AlternateCountryNames {
			claim(countries, "alternative country name", alt, r.Name)
		}
		claim(iso3s, "ISO3", r.ISO3, r.Name)
		claim(ids, "National Society ID", r.RegistryID, r.Name)
	}

	if len(problems) > 0 {
		return errors.NewConfigError("registry", strings.Join(problems, "; "), nil)
	}
	return nil
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Records returns a copy of all records in registry order.
func (r *Registry) Records() []EntityRecord {
	return slices.Clone(r.records)
}

// Lookup returns the record with the given canonical name.
func (r *Registry) Lookup(name string) (EntityRecord, bool) {
	i, ok := r.byName[name]
	if !ok {
		return EntityRecord{}, false
	}
	return r.records[i], true
}

// Names returns the canonical National Society names.
func (r *Registry) Names() []string {
	return r.project(func(e EntityRecord) string { return e.Name })
}

// Countries returns the non-empty country names.
func (r *Registry) Countries() []string {
	return r.project(func(e EntityRecord) string { return e.Country })
}

// ISO3s returns the non-empty ISO3 codes.
func (r *Registry) ISO3s() []string {
	return r.project(func(e EntityRecord) string { return e.ISO3 })
}

func (r *Registry) project(field func(EntityRecord) string) []string {
	out := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		if v := field(rec); v != "" {
			out = append(out, v)
		}
	}
	return out
}
