// Package embedded holds the reference data compiled into the binary: the
// canonical National Society registry and the dataset catalog.
package embedded

import (
	"embed"
)

// FS embeds the registry and catalog yaml files at build time.
//
//go:embed registry/*.yaml catalog/*.yaml
var FS embed.FS

// Paths of the embedded files within FS.
const (
	RegistryFile = "registry/national_societies.yaml"
	CatalogFile  = "catalog/datasets.yaml"
)
