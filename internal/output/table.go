package output

import (
	"bytes"
	"encoding/json"

	"github.com/goccy/go-yaml"

	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// Tabular values render themselves as table data.
type Tabular interface {
	TableData() Data
}

// Table adapts a dataset table for every output format. JSON and YAML keep
// the column order.
type Table struct {
	*table.Table
}

// TableData implements Tabular.
func (t Table) TableData() Data {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		cells := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			cells[j] = r[c]
		}
		out[i] = cells
	}
	return Data{Headers: t.Columns, Rows: out}
}

// row is one table row that marshals with its columns in order.
type row struct {
	columns []string
	values  table.Row
}

// MarshalJSON implements json.Marshaler.
func (r row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[c])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.InterfaceMarshaler.
func (r row) MarshalYAML() (any, error) {
	m := make(yaml.MapSlice, len(r.columns))
	for i, c := range r.columns {
		m[i] = yaml.MapItem{Key: c, Value: r.values[c]}
	}
	return m, nil
}

func orderedRows(t *table.Table) []row {
	out := make([]row, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = row{columns: t.Columns, values: r}
	}
	return out
}

// NamedTable is one dataset's table in a multi-dataset output.
type NamedTable struct {
	Name  string
	Table *table.Table
}

type namedRows struct {
	Dataset string `json:"dataset" yaml:"dataset"`
	Rows    []row  `json:"rows" yaml:"rows"`
}

// ordered swaps tables for row lists that keep column order when marshalled.
func ordered(data any) any {
	switch v := data.(type) {
	case Table:
		return orderedRows(v.Table)
	case *table.Table:
		return orderedRows(v)
	case []NamedTable:
		out := make([]namedRows, len(v))
		for i, nt := range v {
			out[i] = namedRows{Dataset: nt.Name, Rows: orderedRows(nt.Table)}
		}
		return out
	}
	return data
}
