// Package dataprocessing implements the chart-of-accounts data pipeline:
// loading spreadsheets into typed tables, filtering them per column, grouping
// them by composite keys with currency sums, and building the presentation
// model that a table UI renders.
//
// # Data Flow
//
//	CSV/XLSX bytes → Parser → domain.Table → ApplyFilters → GroupAndSum → BuildView
//
// Every stage is a pure function of its inputs. The filter selection is always
// passed in by the caller; the package keeps no state between calls.
//
// # Usage
//
//	table, err := dataprocessing.ParseBytes("master_data.xlsx", data,
//	    dataprocessing.ParseOptions{NormalizeHeaders: true})
//	if err != nil {
//	    return err
//	}
//
//	report, err := dataprocessing.NewMasterAnalyzer().Analyze(table, filters,
//	    dataprocessing.PolicyFirstSeen)
//
// # Leniency
//
// Cell-level coercion never fails: currency text that cannot be parsed counts
// as zero in sums and is shown verbatim in views. Only whole-file problems
// (unreadable content, no data rows) are reported as errors.
package dataprocessing
