package dataset

import (
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// IndicatorRecord is one row of an indicator-format dataset.
type IndicatorRecord struct {
	Name        string `json:"National Society name" yaml:"National Society name"`
	Country     string `json:"Country" yaml:"Country"`
	ISO3        string `json:"ISO3" yaml:"ISO3"`
	Region      string `json:"Region" yaml:"Region"`
	Indicator   string `json:"Indicator" yaml:"Indicator"`
	Value       string `json:"Value" yaml:"Value"`
	Year        string `json:"Year" yaml:"Year"`
	Description string `json:"Description,omitempty" yaml:"Description,omitempty"`
	URL         string `json:"URL,omitempty" yaml:"URL,omitempty"`
	Dataset     string `json:"Dataset,omitempty" yaml:"Dataset,omitempty"`
}

// Records converts an indicator table to typed records.
func Records(t *table.Table) ([]IndicatorRecord, error) {
	var missing []string
	for _, c := range []string{constants.ColumnName, constants.ColumnIndicator, constants.ColumnValue} {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaMismatchError("records", "columns", missing, nil)
	}

	out := make([]IndicatorRecord, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = IndicatorRecord{
			Name:        r[constants.ColumnName],
			Country:     r[constants.ColumnCountry],
			ISO3:        r[constants.ColumnISO3],
			Region:      r[constants.ColumnRegion],
			Indicator:   r[constants.ColumnIndicator],
			Value:       r[constants.ColumnValue],
			Year:        r[constants.ColumnYear],
			Description: r[constants.ColumnDescription],
			URL:         r[constants.ColumnURL],
			Dataset:     r[constants.ColumnDataset],
		}
	}
	return out, nil
}

// Records returns the typed rows of an indicator-format result.
func (r *Result) Records() ([]IndicatorRecord, error) {
	if r.Format != catalog.FormatIndicators {
		return nil, errors.NewValidationError("format", r.Format, "records are only available for indicator datasets")
	}
	return Records(r.Data)
}
