package dataprocessing

import (
	"sort"
	"strings"

	"finora/pkg/contracts/domain"
)

// MatchOptions controls how cell values are compared with allowed values.
type MatchOptions struct {
	FoldCase  bool
	TrimSpace bool
}

func (o MatchOptions) key(s string) string {
	if o.TrimSpace {
		s = strings.TrimSpace(s)
	}
	if o.FoldCase {
		s = strings.ToLower(s)
	}
	return s
}

// UniqueValues returns the sorted, de-duplicated, non-blank string values of
// column. With FoldCase or TrimSpace set, values equal under the options
// collapse to the first spelling seen.
func UniqueValues(t *domain.Table, column string, opts MatchOptions) []string {
	if t == nil {
		return []string{}
	}

	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, row := range t.Rows {
		s := row.Get(column).String()
		if strings.TrimSpace(s) == "" {
			continue
		}
		k := opts.key(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		values = append(values, s)
	}
	sort.Strings(values)
	return values
}

// SameSelection reports whether selected and domainValues hold the same set
// of values under opts. Only such a selection places no constraint on rows:
// a superset still rejects rows whose value lies outside it, blank cells
// included.
func SameSelection(selected, domainValues []string, opts MatchOptions) bool {
	want := makeSet(domainValues, opts)
	got := makeSet(selected, opts)
	if len(got) != len(want) {
		return false
	}
	for k := range got {
		if _, ok := want[k]; !ok {
			return false
		}
	}
	return true
}

// IsActive reports whether a selection restricts the column.
func IsActive(selected []string, restricted bool, domainValues []string, opts MatchOptions) bool {
	if !restricted {
		return false
	}
	if len(selected) == 0 {
		return true
	}
	return !SameSelection(selected, domainValues, opts)
}

// ApplyFilters returns a table holding the rows of t that pass every column
// filter, in original order. A column absent from filters is unrestricted, an
// empty allowed set excludes every row, and an allowed set equal to the
// column's domain is equivalent to no filter.
func ApplyFilters(t *domain.Table, filters domain.Filters, opts MatchOptions) *domain.Table {
	if t == nil {
		return &domain.Table{}
	}

	type constraint struct {
		column  string
		allowed map[string]struct{}
	}

	var constraints []constraint
	for _, column := range filters.Columns() {
		selected := filters[column]
		if len(selected) == 0 {
			return t.WithRows([]domain.Row{})
		}
		if SameSelection(selected, UniqueValues(t, column, opts), opts) {
			continue
		}
		constraints = append(constraints, constraint{column: column, allowed: makeSet(selected, opts)})
	}

	if len(constraints) == 0 {
		return t.WithRows(t.Rows)
	}

	kept := make([]domain.Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		pass := true
		for _, c := range constraints {
			if _, ok := c.allowed[opts.key(row.Get(c.column).String())]; !ok {
				pass = false
				break
			}
		}
		if pass {
			kept = append(kept, row)
		}
	}
	return t.WithRows(kept)
}

// ToggleValue returns a copy of filters with value flipped in column's
// selection. An unrestricted column starts from its full domain. Values are
// compared under opts, so toggling "uae" removes a selected "UAE" when case
// is folded.
func ToggleValue(filters domain.Filters, column, value string, domainValues []string, opts MatchOptions) domain.Filters {
	out := filters.Clone()
	if out == nil {
		out = domain.Filters{}
	}

	current, restricted := out[column]
	if !restricted {
		current = append([]string{}, domainValues...)
	}

	next := make([]string, 0, len(current)+1)
	found := false
	key := opts.key(value)
	for _, v := range current {
		if opts.key(v) == key {
			found = true
			continue
		}
		next = append(next, v)
	}
	if !found {
		next = append(next, value)
	}
	sort.Strings(next)

	out[column] = next
	return out
}

// ToggleAll returns a copy of filters where column selects nothing when it
// currently selects everything, and everything otherwise.
func ToggleAll(filters domain.Filters, column string, domainValues []string, opts MatchOptions) domain.Filters {
	out := filters.Clone()
	if out == nil {
		out = domain.Filters{}
	}

	current, restricted := out[column]
	if !restricted || (len(current) > 0 && SameSelection(current, domainValues, opts)) {
		out[column] = []string{}
	} else {
		out[column] = append([]string{}, domainValues...)
	}
	return out
}

// EffectiveSelection is the selection shown for a column: the explicit one
// when the column is restricted, the full domain otherwise.
func EffectiveSelection(filters domain.Filters, column string, domainValues []string) []string {
	if selected, ok := filters.Selection(column); ok {
		out := append([]string{}, selected...)
		sort.Strings(out)
		return out
	}
	return append([]string{}, domainValues...)
}

func makeSet(values []string, opts MatchOptions) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[opts.key(v)] = struct{}{}
	}
	return set
}
