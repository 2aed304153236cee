package registry

import (
	"bytes"
	"io"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ifrc-nsd/nsdata/internal/embedded"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
)

// Decode reads a YAML list of entity records.
func Decode(r io.Reader, name string) ([]EntityRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}
	var records []EntityRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	return records, nil
}

// LoaderFunc produces the registry snapshot on first use.
type LoaderFunc func() (*Registry, error)

type loadOptions struct {
	fixtureFiles   []string
	fixtureRecords []EntityRecord
}

// LoadOption configures a loader.
type LoadOption func(*loadOptions)

// WithFixtureFile appends the records of a YAML file at load time.
func WithFixtureFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.fixtureFiles = append(o.fixtureFiles, path)
		}
	}
}

// WithFixtureRecords appends records at load time.
func WithFixtureRecords(records ...EntityRecord) LoadOption {
	return func(o *loadOptions) {
		o.fixtureRecords = append(o.fixtureRecords, records...)
	}
}

// FSLoader loads the registry from a file in fsys plus any fixtures.
func FSLoader(fsys fs.FS, path string, opts ...LoadOption) LoaderFunc {
	return func() (*Registry, error) {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, errors.WrapIO("read", path, err)
		}
		records, err := Decode(bytes.NewReader(data), path)
		if err != nil {
			return nil, err
		}

		var o loadOptions
		for _, opt := range opts {
			opt(&o)
		}
		for _, f := range o.fixtureFiles {
			extra, err := decodeFile(f)
			if err != nil {
				return nil, err
			}
			records = append(records, extra...)
		}
		records = append(records, o.fixtureRecords...)

		return New(records)
	}
}

// EmbeddedLoader loads the registry compiled into the binary. The
// NSDATA_TEST_FIXTURES environment variable, when set at first load, names a
// fixture file whose records are appended.
func EmbeddedLoader(opts ...LoadOption) LoaderFunc {
	return func() (*Registry, error) {
		all := append([]LoadOption{WithFixtureFile(os.Getenv(constants.EnvTestFixtures))}, opts...)
		return FSLoader(embedded.FS, embedded.RegistryFile, all...)()
	}
}

// StaticLoader returns a loader over in-memory records.
func StaticLoader(records ...EntityRecord) LoaderFunc {
	return func() (*Registry, error) {
		return New(records)
	}
}

func decodeFile(path string) ([]EntityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f, path)
}
