// Package datasets links every dataset loader into the binary and exposes a
// factory over them.
package datasets

import (
	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"

	// Loaders register themselves from init.
	_ "github.com/ifrc-nsd/nsdata/internal/datasets/databank"
	_ "github.com/ifrc-nsd/nsdata/internal/datasets/icrc"
	_ "github.com/ifrc-nsd/nsdata/internal/datasets/ifrcgo"
	_ "github.com/ifrc-nsd/nsdata/internal/datasets/inform"
	_ "github.com/ifrc-nsd/nsdata/internal/datasets/ocac"
	_ "github.com/ifrc-nsd/nsdata/internal/datasets/sheets"
	_ "github.com/ifrc-nsd/nsdata/internal/datasets/transparency"
	_ "github.com/ifrc-nsd/nsdata/internal/datasets/undp"
	_ "github.com/ifrc-nsd/nsdata/internal/datasets/worldbank"
)

// NewFactory returns a factory that can build every registered loader.
func NewFactory(deps factory.Deps) *factory.Factory {
	return factory.New(deps)
}

// Names returns the names of all registered loaders.
func Names() []string {
	return factory.Names()
}
