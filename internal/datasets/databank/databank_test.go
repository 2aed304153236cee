package databank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/internal/datasets/testhelper"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

var args = dataset.Args{dataset.ArgAPIKey: " key-123 "}

func newServer(t *testing.T, data string) *testhelper.Server {
	t.Helper()
	return testhelper.NewServer(t, testhelper.Routes{
		"/api/entities/ns": "entities.json",
		"/api/Data":        data,
		"/api/documents":   "documents.json",
		"/api/bocapublic":  "boca.json",
	})
}

func find(t *testing.T, tbl *table.Table, name, indicator, year string) table.Row {
	t.Helper()
	for _, r := range tbl.Rows {
		if r[constants.ColumnName] == name && r[constants.ColumnIndicator] == indicator && r[constants.ColumnYear] == year {
			return r
		}
	}
	t.Fatalf("no row for %s / %s / %s", name, indicator, year)
	return nil
}

func TestFDRS(t *testing.T) {
	logs := logging.CaptureLoggingForTest(t)
	srv := newServer(t, "fdrs_data.json")

	data := testhelper.Run(t, FDRSName, args, testhelper.Deps(t, srv), false)

	assert.Equal(t, []string{
		"National Society name", "Country", "ISO3", "Region", "Indicator", "Value", "Year", "URL",
	}, data.Columns)
	assert.Equal(t, 12, data.Len())

	afghan := "Afghan Red Crescent Society"
	kenya := "Kenya Red Cross Society"

	r := find(t, data, afghan, "Number of local units", "2021")
	assert.Equal(t, "34", r[constants.ColumnValue])
	assert.Equal(t, "AFG", r[constants.ColumnISO3])
	assert.Equal(t, "https://data.ifrc.org/FDRS/national-society/DAF001", r[constants.ColumnURL])

	t.Run("booleans become yes and no", func(t *testing.T) {
		assert.Equal(t, "Yes", find(t, data, afghan, "Financial statement available", "2020")[constants.ColumnValue])
		assert.Equal(t, "No", find(t, data, afghan, "Financial statement available", "2021")[constants.ColumnValue])
	})

	t.Run("year of latest document", func(t *testing.T) {
		assert.Equal(t, "2020", find(t, data, afghan, "Year of latest financial statement", "2020")[constants.ColumnValue])
		assert.Equal(t, "2021", find(t, data, kenya, "Year of latest financial statement", "2021")[constants.ColumnValue])
	})

	t.Run("support lists resolve to names", func(t *testing.T) {
		assert.Equal(t, "Afghan Red Crescent Society, Red Cross of Serbia",
			find(t, data, kenya, "Supported NSs", "2021")[constants.ColumnValue])
		assert.Equal(t, kenya, find(t, data, afghan, "Received support from NSs", "2020")[constants.ColumnValue])
		assert.Equal(t, "Red Cross of the Democratic Republic of the Congo",
			find(t, data, afghan, "Received support from NSs", "2021")[constants.ColumnValue])
	})

	t.Run("unknown ids are dropped with a warning", func(t *testing.T) {
		assert.NotContains(t, data.Column(constants.ColumnName), "")
		logs.AssertContains(t, "ZZZ999")
	})

	assert.NotContains(t, data.Distinct(constants.ColumnIndicator), "KPI_notInCatalog")

	for _, req := range srv.Requests() {
		assert.Equal(t, "key-123", req.URL.Query().Get("apiKey"), req.URL.Path)
	}
}

func TestFDRSLatest(t *testing.T) {
	logging.DisableLoggingForTest(t)
	srv := newServer(t, "fdrs_data.json")

	data := testhelper.Run(t, FDRSName, args, testhelper.Deps(t, srv), true)

	assert.Equal(t, 8, data.Len())
	r := find(t, data, "Afghan Red Crescent Society", "Financial statement available", "2021")
	assert.Equal(t, "No", r[constants.ColumnValue])
}

func TestFDRSMixedYears(t *testing.T) {
	srv := newServer(t, "fdrs_mixed_years.json")
	ds, err := NewFDRS(testhelper.Info(t, FDRSName), args, testhelper.Deps(t, srv))
	require.NoError(t, err)

	_, err = ds.Pull(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestSplitSupportIDs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"DAF001, DKE001", []string{"DAF001", "DKE001"}},
		{"DAF001;DKE001", []string{"DAF001", "DKE001"}},
		{"IFRC, DBE004, DAF001", []string{"DAF001"}},
		{"DCS001", []string{"DRS001"}},
		{" , ;", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSupportIDs(tt.in))
		})
	}
}

func TestDocuments(t *testing.T) {
	srv := newServer(t, "fdrs_data.json")

	data := testhelper.Run(t, DocumentsName, args, testhelper.Deps(t, srv), false)

	assert.Equal(t, []string{
		"National Society name", "Country", "ISO3", "Region", "Indicator", "Value", "Year",
	}, data.Columns)
	assert.Equal(t, 7, data.Len())
	assert.ElementsMatch(t, []string{
		"Annual report", "Strategic plan", "Audited financial statement", "Financial statement", "Statutes",
	}, data.Distinct(constants.ColumnIndicator))

	r := find(t, data, "Afghan Red Crescent Society", "Strategic plan", "2020")
	assert.Equal(t, "https://example.org/daf001/sp-2020.pdf", r[constants.ColumnValue])

	var docs *http.Request
	for _, req := range srv.Requests() {
		if req.URL.Path == "/api/documents" {
			docs = req
		}
	}
	require.NotNil(t, docs)
	assert.Equal(t, "DAF001,DCD001,DKE001,DRS001", docs.URL.Query().Get("ns"))

	t.Run("latest", func(t *testing.T) {
		latest := testhelper.Run(t, DocumentsName, args, testhelper.Deps(t, srv), true)
		assert.Equal(t, 6, latest.Len())
		r := find(t, latest, "Kenya Red Cross Society", "Annual report", "2021")
		assert.Equal(t, "https://example.org/dke001/ar-2021.pdf", r[constants.ColumnValue])
	})
}

func TestContacts(t *testing.T) {
	srv := newServer(t, "fdrs_data.json")

	data := testhelper.Run(t, ContactsName, args, testhelper.Deps(t, srv), false)

	assert.Equal(t, []string{
		"National Society name", "Country", "ISO3", "Region", "Address", "City", "Phone", "Email", "Website",
	}, data.Columns)
	require.Equal(t, 4, data.Len())

	for _, r := range data.Rows {
		if r[constants.ColumnISO3] == "KEN" {
			assert.Equal(t, "Kenya Red Cross Society", r[constants.ColumnName])
			assert.Equal(t, "Nairobi", r["City"])
			assert.Equal(t, "https://www.redcross.or.ke", r["Website"])
		}
		if r[constants.ColumnISO3] == "SRB" {
			assert.Empty(t, r["Website"])
		}
	}
}

func TestContactsUnknownName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"KPI_DON_code":"DZZ001","NSO_DON_name":"Nowhereland Red Cross","address":"","city":"","phone":"","email":"","URL":""}]`))
	}))
	defer srv.Close()
	deps := factory.Deps{Registry: testhelper.Registry(t), BaseURL: srv.URL, HTTPClient: srv.Client()}

	t.Run("raise by default", func(t *testing.T) {
		ds, err := NewContacts(testhelper.Info(t, ContactsName), args, deps)
		require.NoError(t, err)
		raw, err := ds.Pull(context.Background(), nil)
		require.NoError(t, err)

		_, err = ds.Process(context.Background(), raw)
		assert.True(t, errors.IsUnknownIdentity(err))
	})

	t.Run("ignore drops the row", func(t *testing.T) {
		withIgnore := dataset.Args{dataset.ArgAPIKey: "key", dataset.ArgOnUnknown: "ignore"}
		ds, err := NewContacts(testhelper.Info(t, ContactsName), withIgnore, deps)
		require.NoError(t, err)
		raw, err := ds.Pull(context.Background(), nil)
		require.NoError(t, err)

		data, err := ds.Process(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, 0, data.Len())
	})
}

func TestBOCA(t *testing.T) {
	srv := newServer(t, "fdrs_data.json")

	data := testhelper.Run(t, BOCAName, args, testhelper.Deps(t, srv), false)

	assert.Equal(t, []string{
		"National Society name", "Country", "ISO3", "Region", "Branch", "Assessment date",
	}, data.Columns)
	require.Equal(t, 4, data.Len())
	assert.ElementsMatch(t, []string{"Afghan Red Crescent Society", "Kenya Red Cross Society"},
		data.Distinct(constants.ColumnName))

	for _, req := range srv.Requests() {
		if req.URL.Path == "/api/bocapublic" {
			assert.Equal(t, "key-123", req.URL.Query().Get("apiKey"))
		}
	}

	t.Run("latest keeps the newest assessment per branch", func(t *testing.T) {
		latest := testhelper.Run(t, BOCAName, args, testhelper.Deps(t, srv), true)
		require.Equal(t, 3, latest.Len())
		for _, r := range latest.Rows {
			if r["Branch"] == "Nairobi" {
				assert.Equal(t, "2022-06-02", r["Assessment date"])
			}
		}
	})
}

func TestBOCAUnknownID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"NsId":"DZZ001","NsName":"Nowhereland","BranchName":"Capital","DateOfAssessment":"2020-01-01"}]`))
	}))
	defer srv.Close()
	deps := factory.Deps{Registry: testhelper.Registry(t), BaseURL: srv.URL, HTTPClient: srv.Client()}

	ds, err := NewBOCA(testhelper.Info(t, BOCAName), args, deps)
	require.NoError(t, err)
	raw, err := ds.Pull(context.Background(), nil)
	require.NoError(t, err)

	_, err = ds.Process(context.Background(), raw)
	assert.True(t, errors.IsUnknownIdentity(err))
}

func TestRequiresAPIKey(t *testing.T) {
	for _, name := range []string{FDRSName, DocumentsName, ContactsName, BOCAName} {
		t.Run(name, func(t *testing.T) {
			_, err := factory.New(testhelper.Deps(t, nil)).New(testhelper.Info(t, name), dataset.Args{})
			assert.True(t, errors.IsConfigError(err))
		})
	}
}
