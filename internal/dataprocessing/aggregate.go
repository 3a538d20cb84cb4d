package dataprocessing

import (
	"fmt"
	"strings"

	"finora/pkg/contracts/domain"
)

// ConflictPolicy decides what a grouped row shows for a column that is
// neither a group key nor summed when rows in the group disagree on it.
type ConflictPolicy string

const (
	// PolicyFirstSeen keeps the value of the first row in the group.
	PolicyFirstSeen ConflictPolicy = "first_seen"
	// PolicyBlankOnConflict empties the column when values differ.
	PolicyBlankOnConflict ConflictPolicy = "blank_on_conflict"
)

// ParsePolicy resolves a policy name. The empty string selects PolicyFirstSeen.
func ParsePolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyFirstSeen:
		return PolicyFirstSeen, nil
	case PolicyBlankOnConflict:
		return PolicyBlankOnConflict, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// GroupResult is the output of GroupAndSum.
type GroupResult struct {
	Table *domain.Table
	// Conflicts counts, per column, the groups whose rows disagreed on that
	// column's value.
	Conflicts map[string]int
}

// keySeparator joins group key parts; it cannot appear in spreadsheet text.
const keySeparator = "\x1f"

type groupState struct {
	row        domain.Row
	sums       map[string]*Sum
	conflicted map[string]bool
}

// GroupAndSum partitions rows by the string coercion of keys and sums
// sumColumns in each group. Groups are emitted in first-seen order. Summed
// columns are always numeric in the output; sum columns missing from the
// declared columns are appended to them.
func GroupAndSum(t *domain.Table, keys, sumColumns []string, policy ConflictPolicy) *GroupResult {
	result := &GroupResult{Conflicts: map[string]int{}}
	if t == nil {
		result.Table = &domain.Table{Rows: []domain.Row{}}
		return result
	}

	columns := append([]string{}, t.Columns...)
	for _, c := range sumColumns {
		if !containsString(columns, c) {
			columns = append(columns, c)
		}
	}

	isKey := toSet(keys)
	isSum := toSet(sumColumns)

	order := make([]string, 0)
	groups := make(map[string]*groupState)

	for _, row := range t.Rows {
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = row.Get(k).String()
		}
		gk := strings.Join(parts, keySeparator)

		g, ok := groups[gk]
		if !ok {
			g = &groupState{
				row:        row.Clone(),
				sums:       make(map[string]*Sum, len(sumColumns)),
				conflicted: map[string]bool{},
			}
			for _, c := range sumColumns {
				g.sums[c] = &Sum{}
			}
			groups[gk] = g
			order = append(order, gk)
		} else {
			for _, c := range columns {
				if isKey[c] || isSum[c] || g.conflicted[c] {
					continue
				}
				if row.Get(c).String() != g.row.Get(c).String() {
					g.conflicted[c] = true
				}
			}
		}

		for _, c := range sumColumns {
			g.sums[c].Add(row.Get(c))
		}
	}

	rows := make([]domain.Row, 0, len(order))
	for _, gk := range order {
		g := groups[gk]
		out := g.row
		for _, c := range sumColumns {
			out[c] = domain.Number(g.sums[c].Float64())
		}
		for c := range g.conflicted {
			result.Conflicts[c]++
			if policy == PolicyBlankOnConflict {
				out[c] = domain.Value{}
			}
		}
		rows = append(rows, out)
	}

	result.Table = &domain.Table{Name: t.Name, Columns: columns, Rows: rows}
	return result
}

// Totals sums each of sumColumns over every row of t.
func Totals(t *domain.Table, sumColumns []string) map[string]float64 {
	totals := make(map[string]float64, len(sumColumns))
	sums := make([]Sum, len(sumColumns))
	if t != nil {
		for _, row := range t.Rows {
			for i, c := range sumColumns {
				sums[i].Add(row.Get(c))
			}
		}
	}
	for i, c := range sumColumns {
		totals[c] = sums[i].Float64()
	}
	return totals
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
