package ocac

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifrc-nsd/nsdata/internal/datasets/testhelper"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
)

func fileArgs() dataset.Args {
	return dataset.Args{dataset.ArgFilepath: filepath.Join("testdata", "ocac.csv")}
}

func TestAssessments(t *testing.T) {
	logs := logging.CaptureLoggingForTest(t)

	data := testhelper.Run(t, Name, fileArgs(), testhelper.Deps(t, nil), false)

	assert.Equal(t, []string{
		"National Society name", "Country", "ISO3", "Region",
		"Year", "Governance score", "Finance score",
	}, data.Columns)
	require.Equal(t, 3, data.Len())

	kenya := data.Rows[1]
	assert.Equal(t, "Kenya Red Cross Society", kenya["National Society name"])
	assert.Equal(t, "KEN", kenya["ISO3"])
	assert.Equal(t, "2021", kenya["Year"])
	assert.Equal(t, "4", kenya["Governance score"])
	assert.Equal(t, "3", kenya["Finance score"])

	assert.Equal(t, "Afghan Red Crescent Society", data.Rows[2]["National Society name"])
	assert.Empty(t, data.Rows[2]["Finance score"])
	logs.AssertContains(t, "Ruritania")
}

func TestAssessmentsLatest(t *testing.T) {
	logging.DisableLoggingForTest(t)

	data := testhelper.Run(t, Name, fileArgs(), testhelper.Deps(t, nil), true)

	require.Equal(t, 2, data.Len())
	assert.Equal(t, "Afghan Red Crescent Society", data.Rows[0]["National Society name"])
	assert.Equal(t, "2019", data.Rows[0]["Year"])
	assert.Equal(t, "Kenya Red Cross Society", data.Rows[1]["National Society name"])
	assert.Equal(t, "2021", data.Rows[1]["Year"])
}

func TestAssessmentDates(t *testing.T) {
	logging.DisableLoggingForTest(t)
	deps := testhelper.Deps(t, nil)

	data := testhelper.Run(t, DatesName, fileArgs(), deps, false)
	assert.Equal(t, []string{
		"National Society name", "Country", "ISO3", "Region", "Indicator", "Value", "Year",
	}, data.Columns)
	require.Equal(t, 3, data.Len())
	for _, r := range data.Rows {
		assert.Equal(t, "OCAC assessment date", r["Indicator"])
		assert.Empty(t, r["Year"])
	}
	assert.Equal(t, "2015", data.Rows[0]["Value"])

	latest := testhelper.Run(t, DatesName, fileArgs(), deps, true)
	require.Equal(t, 2, latest.Len())
	assert.Equal(t, "2019", latest.Rows[0]["Value"])
	assert.Equal(t, "2021", latest.Rows[1]["Value"])
}

func TestAssessmentsRejectFractionalYear(t *testing.T) {
	logging.DisableLoggingForTest(t)

	path := filepath.Join(t.TempDir(), "ocac.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"Code,Name,A\nNational Society,,Kenya Red Cross Society\nYear,,2020.5\n"), 0o600))

	ds, err := New(testhelper.Info(t, Name), dataset.Args{dataset.ArgFilepath: path}, testhelper.Deps(t, nil))
	require.NoError(t, err)
	_, err = dataset.NewRunner(ds, ds.Info(), ds.Registry()).GetData(context.Background(), nil, false)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestIntegralYear(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2021", want: "2021"},
		{in: "2021.0", want: "2021"},
		{in: " 2019 ", want: "2019"},
		{in: "2019.5", wantErr: true},
		{in: "", wantErr: true},
		{in: "n/a", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := integralYear(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
