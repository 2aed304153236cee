package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// fakeDataset reads ISO3-keyed indicator rows from memory.
type fakeDataset struct {
	Base
	raw     *table.Table
	pulls   int
	pullErr error
}

func (f *fakeDataset) Pull(_ context.Context, _ Filters) (*table.Table, error) {
	f.pulls++
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	return f.raw.Clone(), nil
}

func (f *fakeDataset) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	data, err := f.ResolveIdentity(ctx, raw, identity.ISO3, "iso3", identity.Ignore)
	if err != nil {
		return nil, err
	}
	data, err = f.RenameIndicators(ctx, data, identity.Raise)
	if err != nil {
		return nil, err
	}
	return f.OrderColumns(data, []string{"Indicator", "Value", "Year"}, true)
}

func newFake(t *testing.T) (*fakeDataset, catalog.Info) {
	t.Helper()
	info := catalog.Info{
		Name:       "Fake",
		Format:     catalog.FormatIndicators,
		Indicators: []catalog.Rename{{SourceName: "staff", Name: "Paid staff"}},
	}
	raw := table.FromRecords([]string{"iso3", "Indicator", "Value", "Year"}, [][]string{
		{"AFG", "staff", "10", "2020"},
		{"AFG", "staff", "12", "2021"},
		{"KEN", "staff", "7", "2021"},
		{"XXX", "staff", "1", "2021"},
		{"SRB", "other", "3", "2021"},
	})
	reg := registry.NewStaticCache(testRegistry(t))
	return &fakeDataset{Base: NewBase(info, reg), raw: raw}, info
}

func TestRunnerGetData(t *testing.T) {
	ds, info := newFake(t)
	runner := NewRunner(ds, info, ds.Registry())
	assert.Equal(t, StateConstructed, runner.State())

	res, err := runner.GetData(context.Background(), nil, false)
	require.NoError(t, err)
	assert.Equal(t, StateFinalized, runner.State())
	assert.Equal(t, "Fake", res.Name)
	assert.Equal(t, catalog.FormatIndicators, res.Format)
	assert.Equal(t,
		[]string{"National Society name", "Country", "ISO3", "Region", "Indicator", "Value", "Year"},
		res.Data.Columns)
	assert.Equal(t, 3, res.Data.Len(), "unknown ISO3 and undeclared indicators are dropped")

	records, err := res.Records()
	require.NoError(t, err)
	assert.Equal(t, "Afghan Red Crescent Society", records[0].Name)
	assert.Equal(t, "Paid staff", records[0].Indicator)
}

func TestRunnerLatestAndFilters(t *testing.T) {
	ds, info := newFake(t)
	runner := NewRunner(ds, info, ds.Registry())

	logs := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), logs.Logger)

	res, err := runner.GetData(ctx, Filters{"Country": {"Afghanistan"}}, true)
	require.NoError(t, err)
	require.Equal(t, 1, res.Data.Len())
	assert.Equal(t, "12", res.Data.Rows[0]["Value"])
	assert.True(t, res.Latest)
	logs.AssertContains(t, "filtering client-side")

	again, err := runner.GetData(ctx, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Data.Len(), "each call returns a fresh result")
	assert.Equal(t, 2, ds.pulls)
}

func TestRunnerRejectsUnknownFilterValuesBeforePulling(t *testing.T) {
	ds, info := newFake(t)
	runner := NewRunner(ds, info, ds.Registry())

	_, err := runner.GetData(context.Background(), Filters{"Country": {"Nowhereland"}}, false)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, 0, ds.pulls)
	assert.Equal(t, StateConstructed, runner.State())
}

func TestRunnerPropagatesPullErrors(t *testing.T) {
	ds, info := newFake(t)
	ds.pullErr = errors.NewAPIError("fake", 503, "down")
	runner := NewRunner(ds, info, ds.Registry())

	_, err := runner.GetData(context.Background(), nil, false)
	assert.True(t, errors.IsSourceUnavailable(err))
	assert.Equal(t, StateConstructed, runner.State())
}

func TestRunnerMissingDeclaredIndicator(t *testing.T) {
	ds, info := newFake(t)
	info.Indicators = append(info.Indicators, catalog.Rename{SourceName: "volunteers", Name: "Volunteers"})
	ds.Base = NewBase(info, ds.Registry())

	_, err := NewRunner(ds, info, ds.Registry()).GetData(context.Background(), nil, false)
	require.Error(t, err)
	var mismatch *errors.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{"volunteers"}, mismatch.Missing)
}

type wideDataset struct {
	Base
}

func (w *wideDataset) Pull(context.Context, Filters) (*table.Table, error) {
	return table.FromRecords([]string{"Country", "Phone"}, [][]string{{"Kenya", "123"}}), nil
}

func (w *wideDataset) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	data, err := w.ResolveIdentity(ctx, raw, identity.Country, "Country", identity.Raise)
	if err != nil {
		return nil, err
	}
	return w.OrderColumns(data, nil, false)
}

func TestRunnerLatestOnWideDataset(t *testing.T) {
	info := catalog.Info{Name: "Wide", Format: catalog.FormatWide}
	reg := registry.NewStaticCache(testRegistry(t))
	ds := &wideDataset{Base: NewBase(info, reg)}

	logs := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), logs.Logger)

	res, err := NewRunner(ds, info, reg).GetData(ctx, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"National Society name", "Country", "ISO3", "Region", "Phone"}, res.Data.Columns)
	assert.Equal(t, "KEN", res.Data.Rows[0]["ISO3"])
	logs.AssertContains(t, "Latest is not available")

	_, err = res.Records()
	assert.True(t, errors.IsValidationError(err))
}

func TestArgs(t *testing.T) {
	args := Args{"API_KEY": " k ", "filepath": "x.csv"}
	assert.Equal(t, "k", args.Get(ArgAPIKey))
	assert.NoError(t, args.Require("FDRS", ArgAPIKey))

	err := args.Require("OCAC", ArgFilepath, ArgSheetName)
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.Contains(t, err.Error(), "sheet_name")
}

func TestArgsPolicy(t *testing.T) {
	p, err := Args{}.Policy(identity.Raise)
	require.NoError(t, err)
	assert.Equal(t, identity.Raise, p)

	p, err = Args{"on_unknown": "warn"}.Policy(identity.Raise)
	require.NoError(t, err)
	assert.Equal(t, identity.Warn, p)

	_, err = Args{"on_unknown": "shout"}.Policy(identity.Raise)
	assert.True(t, errors.IsValidationError(err))
}
