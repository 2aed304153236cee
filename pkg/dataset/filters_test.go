package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New([]registry.EntityRecord{
		{Name: "Afghan Red Crescent Society", Country: "Afghanistan", ISO3: "AFG", Region: "Asia Pacific", RegistryID: "DAF001",
			AlternateNames: []string{"Afghanistan Red Crescent Society"}},
		{Name: "Kenya Red Cross Society", Country: "Kenya", ISO3: "KEN", Region: "Africa", RegistryID: "DKE001"},
		{Name: "Red Cross of Serbia", Country: "Serbia", ISO3: "SRB", Region: "Europe", RegistryID: "DRS001"},
	})
	require.NoError(t, err)
	return reg
}

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		want    Filters
		wantErr bool
	}{
		{
			name: "string becomes list",
			raw:  map[string]any{"ISO3": "AFG"},
			want: Filters{"ISO3": {"AFG"}},
		},
		{
			name: "lists kept",
			raw:  map[string]any{"Country": []string{"Kenya", "Serbia"}, "National Society name": []any{"Red Cross of Serbia"}},
			want: Filters{"Country": {"Kenya", "Serbia"}, "National Society name": {"Red Cross of Serbia"}},
		},
		{
			name:    "unknown key",
			raw:     map[string]any{"Region": "Africa"},
			wantErr: true,
		},
		{
			name:    "bad value type",
			raw:     map[string]any{"ISO3": 42},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilters(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateFilters(t *testing.T) {
	reg := testRegistry(t)

	assert.NoError(t, ValidateFilters(reg, Filters{"Country": {"Afghanistan"}}))
	assert.NoError(t, ValidateFilters(reg, nil))

	err := ValidateFilters(reg, Filters{"Country": {"Nowhereland", "Afghanistan"}})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "Nowhereland")
	assert.Contains(t, err.Error(), "Kenya")
	assert.NotContains(t, err.Error(), `"Afghanistan"`)

	err = ValidateFilters(reg, Filters{"National Society name": {"Afghanistan Red Crescent Society"}})
	require.Error(t, err, "aliases are not accepted as filter values")
}

func TestFiltersApply(t *testing.T) {
	data := indicatorTable(
		[]string{"Afghan Red Crescent Society", "Afghanistan", "AFG", "Asia Pacific", "Staff", "1", "2020"},
		[]string{"Kenya Red Cross Society", "Kenya", "KEN", "Africa", "Staff", "2", "2020"},
		[]string{"Red Cross of Serbia", "Serbia", "SRB", "Europe", "Staff", "3", "2020"},
	)

	got := Filters{"ISO3": {"AFG", "SRB"}, "Country": {"Serbia"}}.Apply(data)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "Red Cross of Serbia", got.Rows[0]["National Society name"])

	assert.Same(t, data, Filters{}.Apply(data))
	assert.Equal(t, []string{"Country", "ISO3"}, Filters{"ISO3": {"AFG"}, "Country": {"Serbia"}, "National Society name": nil}.Keys())
}
