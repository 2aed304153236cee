// Package registry holds the canonical list of National Societies that every
// dataset row is reconciled against.
//
// The registry is loaded once per process through a Cache and is immutable
// afterwards:
//
//	reg, err := registry.Default().Get()
//	if err != nil {
//	    return err
//	}
//	for _, name := range reg.Names() {
//	    fmt.Println(name)
//	}
package registry

import "strings"

// EntityRecord is one National Society in the canonical registry.
type EntityRecord struct {
	Name                  string   `yaml:"National Society name" json:"name"`
	Country               string   `yaml:"Country" json:"country,omitempty"`
	ISO3                  string   `yaml:"ISO3" json:"iso3,omitempty"`
	ISO2                  string   `yaml:"ISO2" json:"iso2,omitempty"`
	Region                string   `yaml:"Region" json:"region,omitempty"`
	RegistryID            string   `yaml:"National Society ID" json:"registry_id,omitempty"`
	AlternateNames        []string `yaml:"Alternative National Society names" json:"alternate_names,omitempty"`
	AlternateCountryNames []string `yaml:"Alternative country names" json:"alternate_country_names,omitempty"`
}

func (r *EntityRecord) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Country = strings.TrimSpace(r.Country)
	r.ISO3 = strings.TrimSpace(r.ISO3)
	r.ISO2 = strings.TrimSpace(r.ISO2)
	r.Region = strings.TrimSpace(r.Region)
	r.RegistryID = strings.TrimSpace(r.RegistryID)
	r.AlternateNames = trimAll(r.AlternateNames)
	r.AlternateCountryNames = trimAll(r.AlternateCountryNames)
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
