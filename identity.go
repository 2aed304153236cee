package nsdata

import (
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
)

// Identity reconciles National Society identities with the registry.
type Identity interface {
	// Registry returns the National Society registry, loading it on first use
	Registry() (*registry.Registry, error)

	// Clean canonicalises names or countries through the registry aliases
	Clean(values []string, dim identity.Dimension, policy identity.Policy) ([]string, error)

	// Map translates values from one registry dimension to another
	Map(values []string, from, to identity.Dimension, policy identity.Policy) ([]string, error)
}

// Registry returns the National Society registry.
func (c *client) Registry() (*registry.Registry, error) {
	return c.registry.Get()
}

// Clean canonicalises values of dim.
func (c *client) Clean(values []string, dim identity.Dimension, policy identity.Policy) ([]string, error) {
	reg, err := c.registry.Get()
	if err != nil {
		return nil, err
	}
	return identity.NewCleaner(reg).Clean(values, dim, policy)
}

// Map translates values between dimensions.
func (c *client) Map(values []string, from, to identity.Dimension, policy identity.Policy) ([]string, error) {
	reg, err := c.registry.Get()
	if err != nil {
		return nil, err
	}
	return identity.NewMapper(reg).Map(values, from, to, policy)
}
