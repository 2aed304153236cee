// Package catalog holds the declarative description of every dataset: where it
// comes from, its output format and the rename tables loaders apply to source
// indicators and columns.
package catalog

import (
	"bytes"
	"fmt"
	"io/fs"
	"slices"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ifrc-nsd/nsdata/internal/embedded"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
)

// Format is the output shape of a dataset.
type Format string

const (
	// FormatIndicators is the long indicator-log shape.
	FormatIndicators Format = "indicators"
	// FormatWide is one row per entity with arbitrary columns.
	FormatWide Format = "wide"
)

// Rename maps a source name to its published name.
type Rename struct {
	SourceName string `yaml:"source_name" json:"source_name"`
	Name       string `yaml:"name" json:"name"`
}

// Info is the catalog entry of one dataset.
type Info struct {
	Name       string   `yaml:"-" json:"name"`
	Source     string   `yaml:"Source" json:"source"`
	Type       string   `yaml:"Type" json:"type"`
	Format     Format   `yaml:"Format" json:"format"`
	Privacy    string   `yaml:"Privacy" json:"privacy"`
	FocalPoint string   `yaml:"Focal point" json:"focal_point"`
	Link       string   `yaml:"Link" json:"link,omitempty"`
	Indicators []Rename `yaml:"Indicators,omitempty" json:"indicators,omitempty"`
	Columns    []Rename `yaml:"Columns,omitempty" json:"columns,omitempty"`
}

// Metadata returns the filterable attributes keyed by lowercased name.
// Indicators and Columns are not filterable.
func (i Info) Metadata() map[string]string {
	m := map[string]string{
		"source":      i.Source,
		"type":        i.Type,
		"format":      string(i.Format),
		"privacy":     i.Privacy,
		"focal point": i.FocalPoint,
	}
	if i.Link != "" {
		m["link"] = i.Link
	}
	return m
}

// IndicatorRenames returns the indicator rename table.
func (i Info) IndicatorRenames() map[string]string {
	return renameMap(i.Indicators)
}

// SourceIndicators returns the declared source indicator names in order.
func (i Info) SourceIndicators() []string {
	out := make([]string, len(i.Indicators))
	for n, r := range i.Indicators {
		out[n] = r.SourceName
	}
	return out
}

// ColumnRenames returns the column rename table.
func (i Info) ColumnRenames() map[string]string {
	return renameMap(i.Columns)
}

// ColumnNames returns the published column names in declared order.
func (i Info) ColumnNames() []string {
	out := make([]string, len(i.Columns))
	for n, r := range i.Columns {
		out[n] = r.Name
	}
	return out
}

func renameMap(renames []Rename) map[string]string {
	m := make(map[string]string, len(renames))
	for _, r := range renames {
		m[r.SourceName] = r.Name
	}
	return m
}

// Catalog is the validated set of dataset entries.
type Catalog struct {
	infos map[string]Info
	names []string
}

// Decode parses and validates catalog YAML.
func Decode(data []byte, file string) (*Catalog, error) {
	var raw map[string]Info
	if err := yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField()).Decode(&raw); err != nil {
		return nil, errors.WrapParse("yaml", file, err)
	}
	return New(raw)
}

// New builds a catalog from entries keyed by dataset name.
func New(entries map[string]Info) (*Catalog, error) {
	c := &Catalog{infos: make(map[string]Info, len(entries))}
	var problems []string
	for name, info := range entries {
		name = strings.TrimSpace(name)
		info.Name = name
		info.Format = Format(strings.ToLower(string(info.Format)))
		problems = append(problems, validate(info)...)
		c.infos[name] = info
		c.names = append(c.names, name)
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, errors.NewConfigError("catalog", strings.Join(problems, "; "), nil)
	}
	sort.Strings(c.names)
	return c, nil
}

var reservedColumns = append(slices.Clone(constants.IdentityColumns), constants.ColumnIndicator, constants.ColumnValue, constants.ColumnYear)

func validate(info Info) []string {
	var problems []string
	if info.Name == "" {
		problems = append(problems, "dataset with empty name")
	}
	switch info.Format {
	case FormatIndicators, FormatWide:
	default:
		problems = append(problems, fmt.Sprintf("%s: unknown format %q", info.Name, info.Format))
	}
	problems = append(problems, validateRenames(info.Name, "indicator", info.Indicators, nil)...)
	problems = append(problems, validateRenames(info.Name, "column", info.Columns, reservedColumns)...)
	return problems
}

func validateRenames(dataset, kind string, renames []Rename, reserved []string) []string {
	var problems []string
	sources := make(map[string]bool, len(renames))
	targets := make(map[string]bool, len(renames))
	for _, r := range renames {
		switch {
		case strings.TrimSpace(r.SourceName) == "":
			problems = append(problems, fmt.Sprintf("%s: %s with empty source_name", dataset, kind))
		case sources[r.SourceName]:
			problems = append(problems, fmt.Sprintf("%s: duplicate %s source_name %q", dataset, kind, r.SourceName))
		}
		sources[r.SourceName] = true

		switch {
		case strings.TrimSpace(r.Name) == "":
			problems = append(problems, fmt.Sprintf("%s: %s %q has empty name", dataset, kind, r.SourceName))
		case targets[r.Name]:
			problems = append(problems, fmt.Sprintf("%s: duplicate %s name %q", dataset, kind, r.Name))
		case slices.Contains(reserved, r.Name):
			problems = append(problems, fmt.Sprintf("%s: %s name %q collides with a reserved column", dataset, kind, r.Name))
		}
		targets[r.Name] = true
	}
	return problems
}

// Load reads a catalog file from fsys.
func Load(fsys fs.FS, path string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Decode(data, path)
}

// Embedded loads the catalog compiled into the binary.
func Embedded() (*Catalog, error) {
	return Load(embedded.FS, embedded.CatalogFile)
}

// Names returns the dataset names in sorted order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// Len returns the number of datasets.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Get returns the entry for an exact dataset name.
func (c *Catalog) Get(name string) (Info, bool) {
	info, ok := c.infos[name]
	return info, ok
}

// Lookup resolves a dataset name case-insensitively after trimming.
func (c *Catalog) Lookup(name string) (Info, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, n := range c.names {
		if strings.ToLower(n) == key {
			return c.infos[n], true
		}
	}
	return Info{}, false
}

// FilterKeys returns the lowercased union of metadata keys across datasets.
func (c *Catalog) FilterKeys() []string {
	seen := make(map[string]bool)
	for _, info := range c.infos {
		for k := range info.Metadata() {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
