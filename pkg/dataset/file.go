package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

type fileKind int

const (
	kindCSV fileKind = iota
	kindSpreadsheet
)

// FileSource reads a dataset from a CSV or Excel workbook.
type FileSource struct {
	Path  string
	Sheet string
	kind  fileKind
}

// NewFileSource validates the path and sheet. Excel workbooks need a sheet
// name; the legacy .xls format is not readable.
func NewFileSource(path, sheet string) (*FileSource, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.NewConfigError("file source", "filepath is required", nil)
	}
	fs := &FileSource{Path: path, Sheet: strings.TrimSpace(sheet)}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		fs.kind = kindCSV
	case ".xlsx", ".xlsm":
		fs.kind = kindSpreadsheet
		if fs.Sheet == "" {
			return nil, errors.NewConfigError("file source", "Excel file must have sheet_name specified", nil)
		}
	case ".xls":
		return nil, errors.NewConfigError("file source",
			"legacy .xls workbooks are not supported; save the file as .xlsx", nil)
	default:
		return nil, errors.NewConfigError("file source",
			fmt.Sprintf("file %q must be Excel (xlsx) or CSV (csv)", path), nil)
	}
	return fs, nil
}

// Rows returns every row of the file or sheet as text cells.
func (f *FileSource) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch f.kind {
	case kindSpreadsheet:
		return f.sheetRows()
	default:
		return f.csvRows()
	}
}

// Table reads the file with the first row as header.
func (f *FileSource) Table(ctx context.Context) (*table.Table, error) {
	rows, err := f.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return HeaderTable(rows, 0, 1)
}

func (f *FileSource) csvRows() ([][]string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.WrapIO("read", f.Path, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", f.Path, err)
	}
	return rows, nil
}

func (f *FileSource) sheetRows() ([][]string, error) {
	wb, err := excelize.OpenFile(f.Path)
	if err != nil {
		return nil, errors.WrapIO("open", f.Path, err)
	}
	defer func() { _ = wb.Close() }()

	rows, err := wb.GetRows(f.Sheet)
	if err != nil {
		return nil, errors.NewParseError("xlsx", f.Path, fmt.Sprintf("sheet %q", f.Sheet), err)
	}
	return rows, nil
}

// HeaderTable builds a table using rows[headerRow] as column names and rows
// from firstDataRow on as data. Header names are trimmed; blank names become
// "Unnamed: <index>" and repeated names get a ".<n>" suffix.
func HeaderTable(rows [][]string, headerRow, firstDataRow int) (*table.Table, error) {
	if headerRow >= len(rows) {
		return nil, errors.NewSchemaMismatchError("file", "columns", []string{fmt.Sprintf("header row %d", headerRow+1)}, nil)
	}

	raw := rows[headerRow]
	width := len(raw)
	for _, r := range rows[min(firstDataRow, len(rows)):] {
		width = max(width, len(r))
	}

	header := make([]string, width)
	seen := make(map[string]int, width)
	for i := range header {
		name := ""
		if i < len(raw) {
			name = strings.TrimSpace(raw[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}
		header[i] = name
	}

	var data [][]string
	if firstDataRow < len(rows) {
		data = rows[firstDataRow:]
	}
	return table.FromRecords(header, data), nil
}
