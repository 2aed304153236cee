package cmdutil

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifrc-nsd/nsdata/pkg/collector"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
)

var catalogNames = []string{"FDRS", "GO Operations", "GO Projects", "OCAC"}

func TestRequestFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	flags := AddRequestFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"-d", "GO *", "-d", "FDRS",
		"--latest",
		"--iso3", "KEN,AFG",
		"--ns", "Kenya Red Cross Society",
		"--where", "Privacy=public",
		"--arg", "FDRS:api_key=secret",
		"--arg", "on_unknown=ignore",
	}))

	req, err := flags.Request(catalogNames)
	require.NoError(t, err)

	assert.Equal(t, []string{"GO Operations", "GO Projects", "FDRS"}, req.Datasets)
	assert.True(t, req.Latest)
	assert.Equal(t, dataset.Filters{
		constants.ColumnISO3: {"KEN", "AFG"},
		constants.ColumnName: {"Kenya Red Cross Society"},
	}, req.Filters)
	assert.Equal(t, map[string]string{"privacy": "public"}, req.Predicate)
	assert.Equal(t, map[string]dataset.Args{
		"FDRS":                {"api_key": "secret"},
		collector.AllDatasets: {"on_unknown": "ignore"},
	}, req.Args)
}

func TestExpandDatasets(t *testing.T) {
	got, err := ExpandDatasets(nil, catalogNames)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ExpandDatasets([]string{"UNHCR*"}, catalogNames)
	assert.True(t, errors.IsNotFound(err))

	_, err = ExpandDatasets([]string{"^(GO"}, catalogNames)
	assert.True(t, errors.IsValidationError(err))
}

func TestParseDatasetArgs(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]dataset.Args
		wantErr bool
	}{
		{name: "empty", pairs: nil, want: nil},
		{
			name:  "global",
			pairs: []string{"api_key=abc"},
			want:  map[string]dataset.Args{collector.AllDatasets: {"api_key": "abc"}},
		},
		{
			name:  "dataset prefix",
			pairs: []string{"OCAC:filepath=ocac.xlsx", "OCAC:sheet_name=2023"},
			want:  map[string]dataset.Args{"OCAC": {"filepath": "ocac.xlsx", "sheet_name": "2023"}},
		},
		{
			name:  "colon in value",
			pairs: []string{"filepath=C:/data/ocac.xlsx"},
			want:  map[string]dataset.Args{collector.AllDatasets: {"filepath": "C:/data/ocac.xlsx"}},
		},
		{name: "missing value", pairs: []string{"novalue"}, wantErr: true},
		{name: "empty dataset", pairs: []string{":a=b"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDatasetArgs(tt.pairs)
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValueKind(t *testing.T) {
	tests := []struct {
		in      string
		want    collector.ValueKind
		wantErr bool
	}{
		{in: "", want: collector.AnyValue},
		{in: "ANY", want: collector.AnyValue},
		{in: "quant", want: collector.Quantitative},
		{in: "qualitative", want: collector.Qualitative},
		{in: "fuzzy", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValueKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
