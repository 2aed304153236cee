package table

import (
	"encoding/json"
	"slices"
	"strconv"
)

// FromObjects builds a table from decoded JSON objects. Nested objects are
// flattened into "parent.child" columns, arrays are kept as JSON text, and
// null becomes an empty cell. Columns appear in first-seen order, keys of one
// object in sorted order.
func FromObjects(objects []map[string]any) *Table {
	t := New()
	for _, obj := range objects {
		row := make(Row)
		flatten("", obj, row)
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			t.AddColumn(k)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func flatten(prefix string, obj map[string]any, row Row) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, row)
			continue
		}
		row[key] = Stringify(v)
	}
}

// Stringify renders a decoded JSON value as a cell.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
