package worldbank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifrc-nsd/nsdata/internal/datasets/testhelper"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
)

const indicatorPath = "/country/all/indicator/SP.POP.TOTL;NY.GDP.PCAP.CD;SP.DYN.LE00.IN;SI.POV.NAHC"

func routes() testhelper.Routes {
	return testhelper.Routes{
		indicatorPath + "?source=2&page=1&format=json&per_page=1000": "wdi_page1.json",
		indicatorPath + "?source=2&page=2&format=json&per_page=1000": "wdi_page2.json",
	}
}

func TestIndicators(t *testing.T) {
	logs := logging.CaptureLoggingForTest(t)
	srv := testhelper.NewServer(t, routes())

	data := testhelper.Run(t, Name, nil, testhelper.Deps(t, srv), false)

	assert.Len(t, srv.Requests(), 2)
	assert.Equal(t, []string{"National Society name", "Country", "ISO3", "Region", "Indicator", "Value", "Year"}, data.Columns)
	require.Equal(t, 6, data.Len())
	assert.ElementsMatch(t, []string{
		"Population, total",
		"GDP per capita (current US$)",
		"Life expectancy at birth, total (years)",
		"Poverty headcount ratio at national poverty lines (% of population)",
	}, data.Distinct(constants.ColumnIndicator))
	assert.NotContains(t, data.Column(constants.ColumnISO3), "AFE")
	logs.AssertNotContains(t, "AFE")

	var found bool
	for _, r := range data.Rows {
		if r[constants.ColumnISO3] == "KEN" && r[constants.ColumnIndicator] == "Population, total" && r[constants.ColumnYear] == "2022" {
			found = true
			assert.Equal(t, "54027487", r[constants.ColumnValue])
			assert.Equal(t, "Kenya Red Cross Society", r[constants.ColumnName])
		}
	}
	assert.True(t, found)
}

func TestIndicatorsLatest(t *testing.T) {
	srv := testhelper.NewServer(t, routes())

	data := testhelper.Run(t, Name, nil, testhelper.Deps(t, srv), true)

	assert.Equal(t, 5, data.Len())
}

func TestIndicatorsErrorBody(t *testing.T) {
	srv := testhelper.NewServer(t, testhelper.Routes{indicatorPath: "wdi_error.json"})
	ds, err := New(testhelper.Info(t, Name), nil, testhelper.Deps(t, srv))
	require.NoError(t, err)

	_, err = ds.Pull(context.Background(), nil)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
