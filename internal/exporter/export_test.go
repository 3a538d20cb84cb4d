package exporter

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finora/internal/dataprocessing"
	"finora/pkg/contracts/domain"
)

func ledgerView(t *testing.T, filters domain.Filters) *domain.TableView {
	t.Helper()
	table := &domain.Table{
		Name:    "COA_UAE.xlsx",
		Columns: []string{"Account", "Category", "Amount", "Forex_Rate"},
		Rows: []domain.Row{
			{"Account": domain.Text("A100"), "Category": domain.Text("Assets"), "Amount": domain.Number(1234.5), "Forex_Rate": domain.Number(3.67)},
			{"Account": domain.Text("A101"), "Category": domain.Text("Assets"), "Amount": domain.Text("1,000"), "Forex_Rate": domain.Number(3.67)},
			{"Account": domain.Text("E500"), "Category": domain.Text("Expenses"), "Amount": domain.Text("n/a")},
		},
	}
	return dataprocessing.BuildView(table, filters, dataprocessing.ViewOptions{
		Title:           "COA UAE",
		CurrencyColumns: []string{"Amount"},
	})
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{".XLSX", FormatXLSX, false},
		{" xlsx ", FormatXLSX, false},
		{"pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "COA_UAE.csv", FormatCSV.FileName("COA_UAE.xlsx"))
	assert.Equal(t, "final.xlsx", FormatXLSX.FileName("final"))
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
	assert.Equal(t, "13.40", formatFloat(13.4))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ledgerView(t, nil), Options{}))

	assert.Equal(t, [][]string{
		{"Account", "Category", "Amount"},
		{"A100", "Assets", "1,234.50"},
		{"A101", "Assets", "1,000.00"},
		{"E500", "Expenses", "n/a"},
		{"Total", "", "2,234.50"},
	}, readCSV(t, buf.Bytes()))
}

func TestWriteCSV_RawAndBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ledgerView(t, nil), Options{BOMPrefix: true, Raw: true}))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	assert.Equal(t, [][]string{
		{"Account", "Category", "Amount"},
		{"A100", "Assets", "1234.50"},
		{"A101", "Assets", "1000.00"},
		{"E500", "Expenses", "n/a"},
		{"Total", "", "2234.50"},
	}, readCSV(t, data[len(utf8BOM):]))
}

func TestWriteCSV_NoRowsNoTotals(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ledgerView(t, domain.Filters{"Category": {}}), Options{}))

	assert.Equal(t, [][]string{{"Account", "Category", "Amount"}}, readCSV(t, buf.Bytes()))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ledgerView(t, domain.Filters{"Category": {"Assets"}}), FormatXLSX,
		Options{SheetName: "Group Consolidated Account Summary"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	assert.Equal(t, "Group Consolidated Account Summ", sheet)

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Account", "Category", "Amount"}, rows[0])
	assert.Equal(t, "A100", rows[1][0])
	assert.Equal(t, "Total", rows[3][0])

	raw, err := f.GetCellValue(sheet, "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1234.5", raw)

	total, err := f.GetCellValue(sheet, "C4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "2234.5", total)
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Write(&buf, ledgerView(t, nil), Format("pdf"), Options{}), ErrUnsupportedFormat)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Data", sheetName(""))
	assert.Equal(t, "Data", sheetName("[]"))
	assert.Equal(t, "Final Summary", sheetName("Final: Summary"))
}
