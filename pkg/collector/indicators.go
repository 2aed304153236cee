package collector

import (
	"context"
	"maps"
	"strconv"
	"strings"

	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// IndicatorLog is the merged log of every indicator dataset in a batch.
type IndicatorLog struct {
	RunID   string
	Data    *table.Table
	Skipped []Skipped
}

// Records returns the log rows as typed records.
func (l *IndicatorLog) Records() ([]dataset.IndicatorRecord, error) {
	return dataset.Records(l.Data)
}

// ValueKind separates numeric indicator values from text ones.
type ValueKind int

const (
	// AnyValue keeps every row.
	AnyValue ValueKind = iota
	// Quantitative keeps rows whose value parses as a number.
	Quantitative
	// Qualitative keeps rows whose value does not parse as a number.
	Qualitative
)

type logOptions struct {
	kind ValueKind
}

// LogOption configures GetIndicatorsData.
type LogOption func(*logOptions)

// WithValueKind keeps only quantitative or qualitative rows.
func WithValueKind(k ValueKind) LogOption {
	return func(o *logOptions) { o.kind = k }
}

// GetIndicatorsData runs the indicator-format datasets of the request and
// merges them. Each dataset must produce exactly the indicator log columns,
// with Description and URL filled in as empty when absent.
func (c *Collector) GetIndicatorsData(ctx context.Context, req Request, opts ...LogOption) (*IndicatorLog, error) {
	o := &logOptions{}
	for _, opt := range opts {
		opt(o)
	}

	predicate := maps.Clone(req.Predicate)
	if predicate == nil {
		predicate = make(map[string]string, 1)
	}
	predicate["format"] = string(catalog.FormatIndicators)
	req.Predicate = predicate

	batch, err := c.GetData(ctx, req)
	if batch == nil {
		return nil, err
	}
	log := &IndicatorLog{RunID: batch.RunID, Data: table.New(constants.IndicatorLogColumns...), Skipped: batch.Skipped}
	if err != nil {
		return log, err
	}

	parts := make([]*table.Table, 0, len(batch.Results))
	for _, res := range batch.Results {
		t, err := conform(res)
		if err != nil {
			return nil, err
		}
		parts = append(parts, t)
	}
	if len(parts) > 0 {
		merged, err := table.Concat(parts...)
		if err != nil {
			return nil, err
		}
		log.Data = merged.SortBy(
			table.Asc(constants.ColumnDataset),
			table.Asc(constants.ColumnName),
			table.Asc(constants.ColumnIndicator),
			table.Asc(constants.ColumnYear),
			table.Asc(constants.ColumnValue),
		)
	}

	if o.kind != AnyValue {
		log.Data = log.Data.Filter(func(r table.Row) bool {
			_, numeric := parseValue(r[constants.ColumnValue])
			return numeric == (o.kind == Quantitative)
		})
	}
	return log, nil
}

// conform tags a result with its dataset name and checks it has exactly the
// indicator log columns.
func conform(res *dataset.Result) (*table.Table, error) {
	t := res.Data.Clone()
	t.AddColumn(constants.ColumnDescription)
	t.AddColumn(constants.ColumnURL)
	t.AddColumn(constants.ColumnDataset)
	for _, r := range t.Rows {
		r[constants.ColumnDataset] = res.Name
	}
	missing, extra := table.DiffColumns(constants.IndicatorLogColumns, t.Columns)
	if len(missing) > 0 || len(extra) > 0 {
		return nil, errors.NewSchemaMismatchError(res.Name, "columns", missing, extra)
	}
	return t.Select(constants.IndicatorLogColumns...)
}

// QuantRecord is an indicator record with a numeric value.
type QuantRecord struct {
	dataset.IndicatorRecord
	Number float64 `json:"number" yaml:"number"`
}

// Quantitative returns the log rows whose value is numeric.
func (l *IndicatorLog) Quantitative() ([]QuantRecord, error) {
	records, err := l.Records()
	if err != nil {
		return nil, err
	}
	var out []QuantRecord
	for _, r := range records {
		if n, ok := parseValue(r.Value); ok {
			out = append(out, QuantRecord{IndicatorRecord: r, Number: n})
		}
	}
	return out, nil
}

// Qualitative returns the log rows whose value is not numeric.
func (l *IndicatorLog) Qualitative() ([]dataset.IndicatorRecord, error) {
	records, err := l.Records()
	if err != nil {
		return nil, err
	}
	var out []dataset.IndicatorRecord
	for _, r := range records {
		if _, ok := parseValue(r.Value); !ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func parseValue(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f, err == nil
}
