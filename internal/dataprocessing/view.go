package dataprocessing

import (
	"fmt"
	"strings"

	"finora/pkg/contracts/domain"
)

// DefaultHiddenColumns are never shown in table views.
var DefaultHiddenColumns = []string{"Forex_Rate"}

// TotalLabel is written in the first visible column of the totals row.
const TotalLabel = "Total"

// ViewOptions configures BuildView.
type ViewOptions struct {
	Title string
	// Columns fixes the visible columns and their order. Empty means the
	// table's declared columns minus HiddenColumns.
	Columns []string
	// HiddenColumns overrides DefaultHiddenColumns when non-nil.
	HiddenColumns []string
	// CurrencyColumns are formatted as money and totalled.
	CurrencyColumns []string
	Match           MatchOptions
}

// BuildView applies filters to t and renders the presentation model of the
// result: visible columns with their filter state, formatted rows, an optional
// totals row and the "Showing X of Y rows" caption.
func BuildView(t *domain.Table, filters domain.Filters, opts ViewOptions) *domain.TableView {
	if t == nil {
		t = &domain.Table{}
	}

	filtered := ApplyFilters(t, filters, opts.Match)
	visible := visibleColumns(t, opts)

	view := &domain.TableView{
		Title:     opts.Title,
		Columns:   make([]domain.ColumnView, len(visible)),
		Rows:      make([][]string, 0, filtered.Len()),
		TotalRows: t.Len(),
		ShownRows: filtered.Len(),
		Records:   filtered.Rows,
	}
	view.Caption = fmt.Sprintf("Showing %d of %d rows", view.ShownRows, view.TotalRows)

	var currency []string
	for i, col := range visible {
		values := UniqueValues(t, col, opts.Match)
		selected, restricted := filters.Selection(col)
		isCurrency := containsFold(opts.CurrencyColumns, col)
		if isCurrency {
			currency = append(currency, col)
		}
		view.Columns[i] = domain.ColumnView{
			Name:     col,
			Currency: isCurrency,
			Values:   values,
			Selected: EffectiveSelection(filters, col, values),
			Filtered: IsActive(selected, restricted, values, opts.Match),
		}
	}

	for _, col := range filters.Columns() {
		selected, restricted := filters.Selection(col)
		if IsActive(selected, restricted, UniqueValues(t, col, opts.Match), opts.Match) {
			view.FiltersActive = true
			break
		}
	}

	for _, row := range filtered.Rows {
		cells := make([]string, len(visible))
		for i, col := range visible {
			cells[i] = displayCell(row.Get(col), view.Columns[i].Currency)
		}
		view.Rows = append(view.Rows, cells)
	}

	if len(currency) > 0 {
		view.Sums = Totals(filtered, currency)
		if filtered.Len() > 0 {
			view.Totals = make([]string, len(visible))
			for i, c := range view.Columns {
				if c.Currency {
					view.Totals[i] = FormatCurrency(view.Sums[c.Name])
				}
			}
			view.Totals[0] = TotalLabel
		}
	}

	return view
}

// displayCell formats currency cells that hold a number and shows every other
// cell as its string coercion.
func displayCell(v domain.Value, currency bool) string {
	if !currency || v.IsEmpty() {
		return v.String()
	}
	if f, ok := ParseAmountOK(v); ok {
		return FormatCurrency(f)
	}
	return v.String()
}

func visibleColumns(t *domain.Table, opts ViewOptions) []string {
	if len(opts.Columns) > 0 {
		return append([]string{}, opts.Columns...)
	}

	hidden := opts.HiddenColumns
	if hidden == nil {
		hidden = DefaultHiddenColumns
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !containsFold(hidden, c) {
			cols = append(cols, c)
		}
	}
	return cols
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
