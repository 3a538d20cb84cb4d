package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finora/pkg/contracts/domain"
)

func TestGroupAndSumScenario(t *testing.T) {
	res := GroupAndSum(sampleTable(), []string{"country"}, []string{"amt"}, PolicyFirstSeen)

	require.Len(t, res.Table.Rows, 2)
	assert.Equal(t, "UAE", res.Table.Rows[0].Get("country").String())
	assert.Equal(t, domain.Number(150), res.Table.Rows[0]["amt"])
	assert.Equal(t, "KSA", res.Table.Rows[1].Get("country").String())
	assert.Equal(t, domain.Number(10), res.Table.Rows[1]["amt"])

	assert.Equal(t, "Assets", res.Table.Rows[0].Get("category").String(), "first row wins")
	assert.Equal(t, map[string]int{"category": 1}, res.Conflicts)
}

func TestGroupAndSumBlankOnConflict(t *testing.T) {
	res := GroupAndSum(sampleTable(), []string{"country"}, []string{"amt"}, PolicyBlankOnConflict)

	require.Len(t, res.Table.Rows, 2)
	assert.True(t, res.Table.Rows[0]["category"].IsEmpty())
	assert.Equal(t, "Assets", res.Table.Rows[1].Get("category").String())
}

func TestGroupAndSumKeysDoNotCollide(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"a", "b", "amt"},
		Rows: []domain.Row{
			{"a": domain.Text("a"), "b": domain.Text("bc"), "amt": domain.Number(1)},
			{"a": domain.Text("ab"), "b": domain.Text("c"), "amt": domain.Number(2)},
		},
	}

	res := GroupAndSum(table, []string{"a", "b"}, []string{"amt"}, PolicyFirstSeen)
	assert.Len(t, res.Table.Rows, 2)
}

func TestGroupAndSumIdempotent(t *testing.T) {
	once := GroupAndSum(sampleTable(), []string{"country", "category"}, []string{"amt"}, PolicyFirstSeen)
	twice := GroupAndSum(once.Table, []string{"country", "category"}, []string{"amt"}, PolicyFirstSeen)

	assert.Equal(t, once.Table.Columns, twice.Table.Columns)
	assert.Equal(t, once.Table.Rows, twice.Table.Rows)
	assert.Empty(t, twice.Conflicts)
}

func TestGroupAndSumPreservesTotal(t *testing.T) {
	table := sampleTable()
	table.Rows = append(table.Rows,
		domain.Row{"country": domain.Text("PAK"), "amt": domain.Text("1,234.5x")},
		domain.Row{"country": domain.Text("PAK"), "amt": domain.Text("abc")},
	)

	for _, filters := range []domain.Filters{nil, {"country": {"UAE", "PAK"}}, {"country": {}}} {
		filtered := ApplyFilters(table, filters, MatchOptions{})
		grouped := GroupAndSum(filtered, []string{"country"}, []string{"amt"}, PolicyFirstSeen)

		assert.InDelta(t, Totals(filtered, []string{"amt"})["amt"], Totals(grouped.Table, []string{"amt"})["amt"], 1e-9)
	}
}

func TestGroupAndSumAppendsMissingSumColumn(t *testing.T) {
	res := GroupAndSum(sampleTable(), []string{"country"}, []string{"other_amt"}, PolicyFirstSeen)

	assert.Equal(t, []string{"country", "category", "amt", "other_amt"}, res.Table.Columns)
	assert.Equal(t, domain.Number(0), res.Table.Rows[0]["other_amt"])
}

func TestGroupAndSumDoesNotAliasInput(t *testing.T) {
	table := sampleTable()
	_ = GroupAndSum(table, []string{"country"}, []string{"amt"}, PolicyBlankOnConflict)

	assert.Equal(t, domain.Number(100), table.Rows[0]["amt"])
	assert.Equal(t, "Assets", table.Rows[0].Get("category").String())
}

func TestTotals(t *testing.T) {
	totals := Totals(sampleTable(), []string{"amt", "missing"})
	assert.Equal(t, map[string]float64{"amt": 160, "missing": 0}, totals)

	assert.Equal(t, map[string]float64{"amt": 0}, Totals(nil, []string{"amt"}))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyFirstSeen, p)

	p, err = ParsePolicy(" Blank_On_Conflict ")
	require.NoError(t, err)
	assert.Equal(t, PolicyBlankOnConflict, p)

	_, err = ParsePolicy("last_seen")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
