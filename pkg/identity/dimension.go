// Package identity reconciles the many spellings of National Society names,
// countries and codes found in upstream sources with the canonical registry.
//
// A Cleaner canonicalises free-text names and countries through the registry's
// alias lists. A Mapper translates values between registry dimensions, for
// example ISO3 to National Society name. Loaders usually chain the two: clean,
// then map.
package identity

import (
	"fmt"
	"strings"

	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
)

// Dimension names one attribute of a registry record.
type Dimension string

// Registry dimensions. The values match the column names used in tables.
const (
	Name       Dimension = constants.ColumnName
	Country    Dimension = constants.ColumnCountry
	ISO3       Dimension = constants.ColumnISO3
	ISO2       Dimension = "ISO2"
	Region     Dimension = constants.ColumnRegion
	RegistryID Dimension = "National Society ID"
)

var dimensions = []Dimension{Name, Country, ISO3, ISO2, Region, RegistryID}

var dimensionAliases = map[string]Dimension{
	"name":    Name,
	"ns":      Name,
	"country": Country,
	"iso3":    ISO3,
	"iso2":    ISO2,
	"region":  Region,
	"id":      RegistryID,
	"ns_id":   RegistryID,
}

// String returns the dimension's column name.
func (d Dimension) String() string {
	return string(d)
}

// Valid reports whether d is a known dimension.
func (d Dimension) Valid() bool {
	for _, known := range dimensions {
		if d == known {
			return true
		}
	}
	return false
}

// ParseDimension accepts a column name or a short alias such as "iso3".
func ParseDimension(s string) (Dimension, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, d := range dimensions {
		if strings.ToLower(string(d)) == key {
			return d, nil
		}
	}
	if d, ok := dimensionAliases[key]; ok {
		return d, nil
	}
	return "", errors.NewValidationError("dimension", s,
		fmt.Sprintf("must be one of %v", dimensions))
}

func (d Dimension) value(r registry.EntityRecord) string {
	switch d {
	case Name:
		return r.Name
	case Country:
		return r.Country
	case ISO3:
		return r.ISO3
	case ISO2:
		return r.ISO2
	case Region:
		return r.Region
	case RegistryID:
		return r.RegistryID
	}
	return ""
}

// Policy decides what happens to values that do not match the registry.
type Policy int

const (
	// Raise returns an UnknownIdentityError alongside the partial result.
	Raise Policy = iota
	// Warn logs the unknown values.
	Warn
	// Ignore passes unknown values through silently.
	Ignore
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Raise:
		return "raise"
	case Warn:
		return "warn"
	case Ignore:
		return "ignore"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses raise, warn or ignore.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raise":
		return Raise, nil
	case "warn":
		return Warn, nil
	case "ignore":
		return Ignore, nil
	}
	return Raise, errors.NewValidationError("policy", s, "must be one of raise, warn, ignore")
}
