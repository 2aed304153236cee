package output

import (
	"strconv"
	"strings"

	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/collector"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
)

// CatalogData converts catalog entries to table format.
func CatalogData(infos []catalog.Info, showDetails bool) Data {
	headers := []string{"Name", "Source", "Type", "Format", "Privacy"}
	if showDetails {
		headers = append(headers, "Focal point", "Indicators", "Columns", "Link")
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		row := []string{info.Name, info.Source, info.Type, string(info.Format), info.Privacy}
		if showDetails {
			row = append(row,
				info.FocalPoint,
				strconv.Itoa(len(info.Indicators)),
				strconv.Itoa(len(info.Columns)),
				info.Link,
			)
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// DatasetData shows one catalog entry as property/value rows.
func DatasetData(info catalog.Info) Data {
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Name", info.Name},
			{"Source", info.Source},
			{"Type", info.Type},
			{"Format", string(info.Format)},
			{"Privacy", info.Privacy},
			{"Focal point", info.FocalPoint},
			{"Link", info.Link},
			{"Indicators", strconv.Itoa(len(info.Indicators))},
			{"Columns", strconv.Itoa(len(info.Columns))},
		},
	}
}

// RenamesData lists a dataset's indicator and column renames.
func RenamesData(info catalog.Info) Data {
	var rows [][]string
	for _, r := range info.Indicators {
		rows = append(rows, []string{"indicator", r.SourceName, r.Name})
	}
	for _, r := range info.Columns {
		rows = append(rows, []string{"column", r.SourceName, r.Name})
	}
	return Data{Headers: []string{"Kind", "Source name", "Name"}, Rows: rows}
}

// RegistryData converts registry records to table format.
func RegistryData(records []registry.EntityRecord, showDetails bool) Data {
	headers := []string{"National Society name", "Country", "ISO3", "Region", "National Society ID"}
	if showDetails {
		headers = append(headers, "ISO2", "Alternative names", "Alternative country names")
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{r.Name, r.Country, r.ISO3, r.Region, r.RegistryID}
		if showDetails {
			row = append(row, r.ISO2,
				strings.Join(r.AlternateNames, "; "),
				strings.Join(r.AlternateCountryNames, "; "))
		}
		rows = append(rows, row)
	}
	align := make([]Align, len(headers))
	align[2], align[4] = AlignCenter, AlignCenter
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// SkippedData lists the datasets a batch could not produce.
func SkippedData(skipped []collector.Skipped) Data {
	rows := make([][]string, len(skipped))
	for i, s := range skipped {
		rows[i] = []string{s.Name, s.Err.Error()}
	}
	return Data{Headers: []string{"Dataset", "Reason"}, Rows: rows}
}
