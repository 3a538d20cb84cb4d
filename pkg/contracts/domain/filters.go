package domain

import "sort"

// Filters maps a column name to its set of allowed values.
//
// A column absent from the map is unrestricted. A column present with an
// empty slice excludes every row. Filters are replaced wholesale on every
// recomputation; nothing holds on to a previous selection.
type Filters map[string][]string

// Clone returns a deep copy of the filters.
func (f Filters) Clone() Filters {
	if f == nil {
		return nil
	}
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = append([]string{}, v...)
	}
	return out
}

// Columns returns the filtered column names in sorted order.
func (f Filters) Columns() []string {
	cols := make([]string, 0, len(f))
	for k := range f {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Selection returns the allowed values for column and whether the column is
// restricted at all.
func (f Filters) Selection(column string) ([]string, bool) {
	v, ok := f[column]
	return v, ok
}
