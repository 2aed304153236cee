package identity

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
)

// Option configures a Cleaner or Mapper.
type Option func(*options)

type options struct {
	logger *zerolog.Logger
}

// WithLogger sets the logger used for Warn diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: logging.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Cleaner canonicalises names and countries through the registry alias lists.
type Cleaner struct {
	names     map[string]string
	countries map[string]string
	logger    *zerolog.Logger
}

// NewCleaner builds the alias maps for a registry snapshot.
func NewCleaner(reg *registry.Registry, opts ...Option) *Cleaner {
	o := applyOptions(opts)
	c := &Cleaner{
		names:     make(map[string]string),
		countries: make(map[string]string),
		logger:    o.logger,
	}
	for _, rec := range reg.Records() {
		addAliases(c.names, rec.Name, rec.AlternateNames)
		addAliases(c.countries, rec.Country, rec.AlternateCountryNames)
	}
	return c
}

func addAliases(m map[string]string, canonical string, alternates []string) {
	if canonical == "" {
		return
	}
	m[strings.ToLower(canonical)] = canonical
	for _, alt := range alternates {
		m[strings.ToLower(alt)] = canonical
	}
}

// Clean returns values with every recognised alias replaced by its canonical
// form. Values are trimmed; unknown values are kept as they are and reported
// according to policy. Empty values pass through unreported.
func (c *Cleaner) Clean(values []string, dim Dimension, policy Policy) ([]string, error) {
	var aliases map[string]string
	switch dim {
	case Name:
		aliases = c.names
	case Country:
		aliases = c.countries
	default:
		return nil, errors.NewValidationError("dimension", dim, "only National Society name and Country can be cleaned")
	}

	out := make([]string, len(values))
	var unknown []string
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if canonical, ok := aliases[strings.ToLower(v)]; ok {
			out[i] = canonical
			continue
		}
		out[i] = v
		unknown = append(unknown, v)
	}

	return out, c.report(policy, dim, "", unknown)
}

// CleanNames cleans National Society names.
func (c *Cleaner) CleanNames(values []string, policy Policy) ([]string, error) {
	return c.Clean(values, Name, policy)
}

// CleanCountries cleans country names.
func (c *Cleaner) CleanCountries(values []string, policy Policy) ([]string, error) {
	return c.Clean(values, Country, policy)
}

func (c *Cleaner) report(policy Policy, dim Dimension, target Dimension, unknown []string) error {
	if len(unknown) == 0 {
		return nil
	}
	err := errors.NewUnknownIdentityError(dim.String(), target.String(), unknown)
	switch policy {
	case Raise:
		return err
	case Warn:
		logging.Unknown(c.logger, dim.String(), target.String(), err.Values).Msg(err.Error())
	}
	return nil
}
