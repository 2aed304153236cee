package nsdata

import (
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
)

// Catalog provides read access to the dataset catalog.
type Catalog interface {
	// Catalog returns the dataset catalog
	Catalog() *catalog.Catalog

	// Datasets returns the catalog entries matching every metadata
	// predicate, in name order
	Datasets(predicate map[string]string) ([]catalog.Info, error)
}

// Catalog returns the dataset catalog. Catalogs are immutable once built.
func (c *client) Catalog() *catalog.Catalog {
	return c.catalog
}

// Datasets returns the catalog entries matching predicate.
func (c *client) Datasets(predicate map[string]string) ([]catalog.Info, error) {
	names, err := c.collector.FilterCatalog(c.catalog.Names(), predicate)
	if err != nil {
		return nil, err
	}
	infos := make([]catalog.Info, 0, len(names))
	for _, name := range names {
		info, _ := c.catalog.Get(name)
		infos = append(infos, info)
	}
	return infos, nil
}
