package sheets

import (
	"context"
	"regexp"
	"strings"

	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// Catalog names of the legal datasets.
const (
	RecognitionLawsName = "Recognition Laws"
	StatutesName        = "Statutes"
)

// Statutes headers are numbered, as in "3. Adopted by".
var numberedHeader = regexp.MustCompile(`^\d.`)

// The statutes sheet holds its data in the first eight columns.
const statutesColumns = 8

func init() {
	register(RecognitionLawsName, func(s sheet) dataset.Dataset { return &RecognitionLaws{sheet: s} })
	register(StatutesName, func(s sheet) dataset.Dataset { return &Statutes{sheet: s} })
}

// RecognitionLaws lists the domestic law recognising each National Society.
type RecognitionLaws struct {
	sheet
}

// Pull implements dataset.Dataset. The header is on the second row.
func (d *RecognitionLaws) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	return d.read(ctx, 1, 2)
}

// Process implements dataset.Dataset.
func (d *RecognitionLaws) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone().DropEmptyRows()
	t.Rename(map[string]string{columnNationalSociety: constants.ColumnCountry})
	return d.byCountry(ctx, t, false)
}

// Statutes records the date and revision status of each National Society's statutes.
type Statutes struct {
	sheet
}

// Pull implements dataset.Dataset. The header is on the third row and data
// starts on the fifth.
func (d *Statutes) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	t, err := d.read(ctx, 2, 4)
	if err != nil {
		return nil, err
	}
	return t.Select(t.Columns[:min(statutesColumns, len(t.Columns))]...)
}

// Process implements dataset.Dataset.
func (d *Statutes) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone().DropEmptyRows()

	renames := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		renames[c] = cleanStatutesHeader(c)
	}
	t.Rename(renames)
	t.Rename(map[string]string{columnNationalSociety: constants.ColumnCountry})
	return d.byCountry(ctx, t, false)
}

func cleanStatutesHeader(name string) string {
	name = numberedHeader.ReplaceAllString(strings.TrimSpace(name), "")
	return strings.ReplaceAll(strings.TrimSpace(name), "\n", " ")
}
