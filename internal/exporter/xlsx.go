package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"finora/internal/dataprocessing"
	"finora/pkg/contracts/domain"
)

// Built-in number format "#,##0.00".
const currencyNumFmt = 4

const defaultSheetName = "Data"

// WriteXLSX writes view as a single-sheet workbook. Currency cells become
// numeric cells with a thousands-separated two-decimal format.
func WriteXLSX(w io.Writer, view *domain.TableView, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(opts.SheetName)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: currencyNumFmt})
	if err != nil {
		return fmt.Errorf("failed to create currency style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: currencyNumFmt})
	if err != nil {
		return fmt.Errorf("failed to create totals style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	if n := len(view.Columns); n > 0 {
		if err := sw.SetColWidth(1, n, 18); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	header := make([]interface{}, len(view.Columns))
	for i, col := range view.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: col.Name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rowNum := 2
	for i, display := range view.Rows {
		cells := make([]interface{}, len(view.Columns))
		for c, col := range view.Columns {
			cells[c] = display[c]
			if !col.Currency || i >= len(view.Records) {
				continue
			}
			v := view.Records[i].Get(col.Name)
			if v.IsEmpty() {
				continue
			}
			if amount, ok := dataprocessing.ParseAmountOK(v); ok {
				cells[c] = excelize.Cell{StyleID: moneyStyle, Value: amount}
			}
		}
		if err := writeRow(sw, rowNum, cells); err != nil {
			return err
		}
		rowNum++
	}

	if len(view.Totals) > 0 {
		cells := make([]interface{}, len(view.Columns))
		for c, col := range view.Columns {
			if col.Currency && c > 0 {
				cells[c] = excelize.Cell{StyleID: totalStyle, Value: view.Sums[col.Name]}
			} else {
				cells[c] = excelize.Cell{StyleID: headerStyle, Value: view.Totals[c]}
			}
		}
		if err := writeRow(sw, rowNum, cells); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetName drops characters Excel rejects in sheet names and truncates to
// the 31 character limit.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if runes := []rune(name); len(runes) > 31 {
		name = strings.TrimSpace(string(runes[:31]))
	}
	if name == "" {
		return defaultSheetName
	}
	return name
}

func writeRow(sw *excelize.StreamWriter, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := sw.SetRow(cell, cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
