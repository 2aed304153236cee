package nsdata

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifrc-nsd/nsdata/internal/datasets"
	"github.com/ifrc-nsd/nsdata/internal/output"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/collector"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

type stubDataset struct {
	name string
	data *table.Table
	err  error
}

func (d *stubDataset) Name() string { return d.name }

func (d *stubDataset) Pull(context.Context, dataset.Filters) (*table.Table, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.data.Clone(), nil
}

func (d *stubDataset) Process(_ context.Context, raw *table.Table) (*table.Table, error) {
	return raw, nil
}

type stubFactory struct {
	mu   sync.Mutex
	args map[string]dataset.Args
}

func (f *stubFactory) Required(string) []string { return nil }

func (f *stubFactory) New(info catalog.Info, args dataset.Args) (dataset.Dataset, error) {
	f.mu.Lock()
	f.args[info.Name] = args
	f.mu.Unlock()
	if info.Name == "Broken" {
		return &stubDataset{name: info.Name, err: errors.NewAPIError("Broken", 503, "down")}, nil
	}
	return &stubDataset{name: info.Name, data: table.FromRecords(
		[]string{"National Society name", "Country", "ISO3", "Region", "Indicator", "Value", "Year"},
		[][]string{{"Kenya Red Cross Society", "Kenya", "KEN", "Africa", "Branches", "47", "2022"}},
	)}, nil
}

func newTestClient(t *testing.T, opts ...Option) (Client, *stubFactory) {
	t.Helper()
	cat, err := catalog.New(map[string]catalog.Info{
		"Branches": {Source: "Test", Format: catalog.FormatIndicators, Privacy: "public"},
		"Broken":   {Source: "Test", Format: catalog.FormatIndicators, Privacy: "restricted"},
	})
	require.NoError(t, err)
	reg, err := registry.EmbeddedLoader()()
	require.NoError(t, err)

	f := &stubFactory{args: make(map[string]dataset.Args)}
	base := []Option{WithCatalog(cat), WithFactory(f), WithRegistry(registry.NewStaticCache(reg))}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return c, f
}

func TestNewUsesEmbeddedCatalog(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.Equal(t, datasets.Names(), c.Catalog().Names())

	infos, err := c.Datasets(map[string]string{"format": "indicators"})
	require.NoError(t, err)
	require.NotEmpty(t, infos)
	for _, info := range infos {
		assert.Equal(t, catalog.FormatIndicators, info.Format, info.Name)
	}

	_, err = c.Datasets(map[string]string{"colour": "blue"})
	assert.True(t, errors.IsValidationError(err))
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(WithConcurrency(0))
	assert.True(t, errors.IsValidationError(err))

	_, err = New(WithRegistryFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.True(t, errors.IsConfigError(err))

	_, err = New(WithCatalogFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.True(t, errors.IsConfigError(err))
}

func TestGetDataFiresHooks(t *testing.T) {
	c, _ := newTestClient(t)

	var collected, skipped []string
	c.OnDatasetCollected(func(res *dataset.Result) { collected = append(collected, res.Name) })
	c.OnDatasetSkipped(func(s collector.Skipped) { skipped = append(skipped, s.Name) })

	batch, err := c.GetData(context.Background(), collector.Request{})
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)

	assert.Equal(t, []string{"Branches"}, collected)
	assert.Equal(t, []string{"Broken"}, skipped)
}

func TestGetIndicatorsDataFiresSkipHooks(t *testing.T) {
	c, _ := newTestClient(t)

	var skipped []string
	c.OnDatasetSkipped(func(s collector.Skipped) { skipped = append(skipped, s.Name) })

	log, err := c.GetIndicatorsData(context.Background(), collector.Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, log.Data.Len())
	assert.Equal(t, []string{"Broken"}, skipped)
}

func TestDatasetArgsLayering(t *testing.T) {
	c, f := newTestClient(t,
		WithDatasetArgs(collector.AllDatasets, dataset.Args{"on_unknown": "warn"}),
		WithDatasetArgs("branches", dataset.Args{"api_key": "configured"}),
	)

	_, err := c.GetData(context.Background(), collector.Request{
		Datasets: []string{"Branches"},
		Args:     map[string]dataset.Args{"BRANCHES": {"api_key": "requested"}},
	})
	require.NoError(t, err)

	assert.Equal(t, dataset.Args{"on_unknown": "warn", "api_key": "requested"}, f.args["Branches"])
}

func TestIdentity(t *testing.T) {
	c, _ := newTestClient(t)

	reg, err := c.Registry()
	require.NoError(t, err)
	assert.Positive(t, reg.Len())

	cleaned, err := c.Clean([]string{" kenya red cross society "}, identity.Name, identity.Raise)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kenya Red Cross Society"}, cleaned)

	mapped, err := c.Map([]string{"KEN"}, identity.ISO3, identity.Name, identity.Raise)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kenya Red Cross Society"}, mapped)

	_, err = c.Map([]string{"XXX"}, identity.ISO3, identity.Name, identity.Raise)
	assert.True(t, errors.IsUnknownIdentity(err))
}

func TestSave(t *testing.T) {
	c, _ := newTestClient(t)
	batch, err := c.GetData(context.Background(), collector.Request{Datasets: []string{"Branches"}})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := c.Save(batch, dir, output.FormatCSV)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "branches.csv")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Kenya Red Cross Society,Kenya,KEN,Africa,Branches,47,2022")
}

func TestFileName(t *testing.T) {
	tests := []struct {
		dataset string
		format  output.Format
		want    string
	}{
		{"World Bank Population", output.FormatCSV, "world_bank_population.csv"},
		{"OCAC Assessment Dates", output.FormatJSON, "ocac_assessment_dates.json"},
		{"INFORM Risk", output.FormatMarkdown, "inform_risk.md"},
		{"  GO: Operations ", output.FormatYAML, "go_operations.yaml"},
		{"FDRS", output.FormatWide, "fdrs.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.dataset, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.dataset, tt.format))
		})
	}
}
