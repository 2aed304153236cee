package sheets

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/internal/datasets/testhelper"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
)

var identityColumns = []string{"National Society name", "Country", "ISO3", "Region"}

func csvArgs(file string) dataset.Args {
	return dataset.Args{dataset.ArgFilepath: filepath.Join("testdata", file)}
}

func TestYABC(t *testing.T) {
	logs := logging.CaptureLoggingForTest(t)

	data := testhelper.Run(t, YABCName, csvArgs("yabc.csv"), testhelper.Deps(t, nil), false)

	assert.Equal(t, append(identityColumns,
		"Number of YABC trainings to date", "Number of peer educators", "Number of trainers", "Comment",
	), data.Columns)
	require.Equal(t, 2, data.Len())
	assert.Equal(t, "Kenya Red Cross Society", data.Rows[0]["National Society name"])
	assert.Equal(t, "150", data.Rows[0]["Number of peer educators"])
	assert.Equal(t, "Active programme", data.Rows[0]["Comment"])
	assert.Equal(t, "Afghan Red Crescent Society", data.Rows[1]["National Society name"])
	assert.Equal(t, "AFG", data.Rows[1]["ISO3"])
	logs.AssertContains(t, "Ruritania")
	logs.AssertNotContains(t, "TOTAL")
}

func TestRecognitionLaws(t *testing.T) {
	logging.DisableLoggingForTest(t)

	data := testhelper.Run(t, RecognitionLawsName, csvArgs("recognition_laws.csv"), testhelper.Deps(t, nil), false)

	assert.Equal(t, append(identityColumns,
		"Recognition law title", "Recognition law year", "Recognition law link", "Reviewer",
	), data.Columns)
	require.Equal(t, 2, data.Len())
	assert.Equal(t, "Kenya Red Cross Society Act", data.Rows[0]["Recognition law title"])
	assert.Equal(t, "1965", data.Rows[0]["Recognition law year"])
	assert.Equal(t, "Afghan Red Crescent Society", data.Rows[1]["National Society name"])
}

func TestStatutes(t *testing.T) {
	logging.DisableLoggingForTest(t)

	data := testhelper.Run(t, StatutesName, csvArgs("statutes.csv"), testhelper.Deps(t, nil), false)

	assert.Equal(t, append(identityColumns,
		"Statutes date", "Statutes adopted by", "Statutes revision status",
		"Notes", "Contact", "Source", "Reviewed",
	), data.Columns)
	require.Equal(t, 2, data.Len())
	assert.Equal(t, "Kenya Red Cross Society", data.Rows[0]["National Society name"])
	assert.Equal(t, "2015", data.Rows[0]["Statutes date"])
	assert.Equal(t, "Up to date", data.Rows[0]["Statutes revision status"])
	assert.Equal(t, "Revision ongoing", data.Rows[1]["Statutes revision status"])
}

func TestCleanStatutesHeader(t *testing.T) {
	tests := map[string]string{
		"1. Date of the statutes": "Date of the statutes",
		"3. Status of\nrevision":  "Status of revision",
		"National Society (NS)":   "National Society (NS)",
		" 2. Adopted by ":         "Adopted by",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanStatutesHeader(in), in)
	}
}

func writeLogistics(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logistics.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Projects")
	require.NoError(t, err)
	rows := [][]any{
		{"Country", "Region", "Project", "Status", "Start date", "End date"},
		{"Kenya", "East Africa", "Warehouse", "Ongoing", "2022-01-01"},
		{},
		{"Afghanistan", "Asia", "Fleet", "Completed", "2020-01-01", "2021-06-30"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Projects", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestLogistics(t *testing.T) {
	logging.DisableLoggingForTest(t)
	path := writeLogistics(t)

	data := testhelper.Run(t, LogisticsName, dataset.Args{
		dataset.ArgFilepath:  path,
		dataset.ArgSheetName: "Projects",
	}, testhelper.Deps(t, nil), false)

	assert.Equal(t, append(identityColumns,
		"Logistics project", "Project status", "Start date", "End date",
	), data.Columns)
	require.Equal(t, 2, data.Len())
	assert.Equal(t, "Africa", data.Rows[0]["Region"])
	assert.Equal(t, "Warehouse", data.Rows[0]["Logistics project"])
	assert.Empty(t, data.Rows[0]["End date"])
	assert.Equal(t, "2021-06-30", data.Rows[1]["End date"])
}

func TestSheetArguments(t *testing.T) {
	deps := testhelper.Deps(t, nil)
	f := factory.New(deps)
	info := testhelper.Info(t, LogisticsName)

	_, err := f.New(info, nil)
	assert.True(t, errors.IsConfigError(err), "missing filepath: %v", err)

	_, err = f.New(info, dataset.Args{dataset.ArgFilepath: "projects.xlsx"})
	assert.True(t, errors.IsConfigError(err), "missing sheet: %v", err)

	_, err = f.New(info, dataset.Args{dataset.ArgFilepath: "projects.xls", dataset.ArgSheetName: "Projects"})
	assert.True(t, errors.IsConfigError(err), "legacy workbook: %v", err)

	_, err = f.New(info, dataset.Args{dataset.ArgFilepath: "projects.csv", dataset.ArgOnUnknown: "explode"})
	assert.Error(t, err)
}
