package domain

import (
	"encoding/json"
	"strconv"
)

// ValueKind identifies which variant a Value holds.
type ValueKind uint8

const (
	// KindEmpty is a missing or blank cell.
	KindEmpty ValueKind = iota
	// KindText is a textual cell.
	KindText
	// KindNumber is a numeric cell.
	KindNumber
)

// Value is a single cell: either text, a number, or empty.
//
// Every consumer that filters or groups works on the string coercion returned
// by String, so a numeric cell 100 and a text cell "100" compare equal.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
}

// Text returns a textual Value. The empty string yields the empty Value.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: KindText, Text: s}
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Number: f}
}

// IsEmpty reports whether the cell carries no data.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// IsNumber reports whether the cell holds a number.
func (v Value) IsNumber() bool {
	return v.Kind == KindNumber
}

// String returns the string coercion of the value. Numbers use the shortest
// decimal representation that round-trips ("150", "1234.5").
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON encodes numbers as JSON numbers and everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNumber {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts a JSON number, string or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Text(s)
	return nil
}

// Row maps a column name to its cell value. A column missing from the map
// reads as the empty Value.
type Row map[string]Value

// Get returns the value stored for column, or the empty Value.
func (r Row) Get(column string) Value {
	return r[column]
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered sequence of rows sharing a declared set of columns.
// Rows are treated as immutable once the table has been loaded.
type Table struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the column is declared.
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// WithRows returns a table with the same name and columns and the given rows.
func (t *Table) WithRows(rows []Row) *Table {
	return &Table{Name: t.Name, Columns: t.Columns, Rows: rows}
}
