package dataprocessing

import (
	"log/slog"
	"strings"

	"finora/pkg/contracts/domain"
)

// Master dataset columns, after header normalization.
const (
	ColumnCountry              = "country"
	ColumnERPSystem            = "erp_system"
	ColumnLocalCurrency        = "local_currency"
	ColumnForeignCurrency      = "foreign_currency"
	ColumnGroupCode            = "group_code"
	ColumnAccountCode          = "account_code"
	ColumnAccountType          = "account_type"
	ColumnCategory             = "category"
	ColumnSubCategory          = "sub_category"
	ColumnLocalCurrencyAmount  = "local_currency_amount"
	ColumnGlobalCurrencyAmount = "global_currency_amount"
)

// Summary identifiers.
const (
	SummarySubsidiary = "subsidiary"
	SummaryGroup      = "group"
	SummaryFinal      = "final"
)

// MasterCurrencyColumns are summed in every master summary.
var MasterCurrencyColumns = []string{ColumnLocalCurrencyAmount, ColumnGlobalCurrencyAmount}

// MasterFilterColumns are the columns offered in the master filter panel.
var MasterFilterColumns = []string{
	ColumnCountry,
	ColumnForeignCurrency,
	ColumnAccountType,
	ColumnCategory,
	ColumnSubCategory,
}

// MasterMatch compares master filter values case-insensitively after trimming.
var MasterMatch = MatchOptions{FoldCase: true, TrimSpace: true}

// SummaryDef describes one aggregation level of the master report.
type SummaryDef struct {
	ID      string
	Title   string
	Keys    []string
	Display []string
}

// MasterSummaries lists the master report levels in display order.
var MasterSummaries = []SummaryDef{
	{
		ID:    SummarySubsidiary,
		Title: "Subsidiary Wise Summary",
		Keys:  []string{ColumnCountry, ColumnERPSystem, ColumnLocalCurrency, ColumnForeignCurrency},
		Display: []string{
			ColumnCountry, ColumnERPSystem, ColumnLocalCurrency, ColumnLocalCurrencyAmount,
			ColumnForeignCurrency, ColumnGlobalCurrencyAmount,
		},
	},
	{
		ID:    SummaryGroup,
		Title: "Group Consolidated Account Summary",
		Keys: []string{
			ColumnCountry, ColumnERPSystem, ColumnGroupCode, ColumnAccountCode,
			ColumnAccountType, ColumnCategory, ColumnSubCategory, ColumnForeignCurrency,
		},
		Display: []string{
			ColumnCountry, ColumnERPSystem, ColumnGroupCode, ColumnAccountCode,
			ColumnAccountType, ColumnCategory, ColumnSubCategory, ColumnLocalCurrencyAmount,
			ColumnForeignCurrency, ColumnGlobalCurrencyAmount,
		},
	},
	{
		ID:    SummaryFinal,
		Title: "Final Consolidated Summary",
		Keys: []string{
			ColumnGroupCode, ColumnAccountType, ColumnCategory, ColumnSubCategory, ColumnForeignCurrency,
		},
		Display: []string{
			ColumnGroupCode, ColumnAccountType, ColumnCategory, ColumnSubCategory,
			ColumnLocalCurrencyAmount, ColumnForeignCurrency, ColumnGlobalCurrencyAmount,
		},
	},
}

// LookupSummary returns the definition with the given id.
func LookupSummary(id string) (SummaryDef, bool) {
	for _, def := range MasterSummaries {
		if def.ID == id {
			return def, true
		}
	}
	return SummaryDef{}, false
}

// MasterAnalyzer builds the master report. The zero value is not usable; use
// NewMasterAnalyzer.
type MasterAnalyzer struct {
	filterColumns   []string
	currencyColumns []string
	summaries       []SummaryDef
	logger          *slog.Logger
}

// NewMasterAnalyzer returns an analyzer with the standard filter columns and
// summary levels.
func NewMasterAnalyzer() *MasterAnalyzer {
	return &MasterAnalyzer{
		filterColumns:   MasterFilterColumns,
		currencyColumns: MasterCurrencyColumns,
		summaries:       MasterSummaries,
		logger:          slog.Default().With(slog.String("component", "master_analyzer")),
	}
}

// WithLogger sets the logger used for conflict reporting.
func (a *MasterAnalyzer) WithLogger(logger *slog.Logger) *MasterAnalyzer {
	a.logger = logger.With(slog.String("component", "master_analyzer"))
	return a
}

// Analyze filters the master table and aggregates it into the summary levels.
// Only the filter panel columns are honoured in filters.
func (a *MasterAnalyzer) Analyze(t *domain.Table, filters domain.Filters, policy ConflictPolicy) (*domain.MasterReport, error) {
	if t.Len() == 0 {
		return nil, ErrNoRows
	}
	if policy == "" {
		policy = PolicyFirstSeen
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}

	panelFilters := domain.Filters{}
	for _, col := range a.filterColumns {
		if selected, ok := filters.Selection(col); ok {
			panelFilters[col] = selected
		}
	}

	report := &domain.MasterReport{
		Policy:    string(policy),
		Filters:   make([]domain.FilterPanel, 0, len(a.filterColumns)),
		TotalRows: t.Len(),
		Summaries: make([]domain.Summary, 0, len(a.summaries)),
	}

	for _, col := range a.filterColumns {
		options := UniqueValues(t, col, MasterMatch)
		selected, restricted := panelFilters.Selection(col)
		report.Filters = append(report.Filters, domain.FilterPanel{
			Column:      col,
			Label:       FilterLabel(col),
			Options:     options,
			Selected:    EffectiveSelection(panelFilters, col, options),
			AllSelected: !restricted || (len(selected) > 0 && SameSelection(selected, options, MasterMatch)),
		})
	}

	filtered := ApplyFilters(t, panelFilters, MasterMatch)
	report.FilteredRows = filtered.Len()

	for _, def := range a.summaries {
		grouped := GroupAndSum(filtered, def.Keys, a.currencyColumns, policy)
		view := BuildView(grouped.Table, nil, ViewOptions{
			Title:           def.Title,
			Columns:         def.Display,
			CurrencyColumns: a.currencyColumns,
		})

		for col, n := range grouped.Conflicts {
			a.logger.Debug("Group values differ",
				slog.String("summary", def.ID),
				slog.String("column", col),
				slog.Int("groups", n),
				slog.String("policy", string(policy)))
		}

		report.Summaries = append(report.Summaries, domain.Summary{
			ID:        def.ID,
			Title:     def.Title,
			GroupKeys: append([]string{}, def.Keys...),
			Groups:    grouped.Table.Len(),
			Conflicts: grouped.Conflicts,
			View:      *view,
		})
	}

	return report, nil
}

// FilterLabel turns a column name into a panel label ("sub_category" →
// "Sub Category").
func FilterLabel(column string) string {
	words := strings.Fields(strings.ReplaceAll(column, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
