package dataprocessing

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finora/pkg/contracts/domain"
)

// writeWorkbook builds a one-sheet workbook from rows and saves it under dir.
func writeWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// parseWorkbookFile reads a saved workbook back through ParseBytes the way
// the dataset service does after fetching it.
func parseWorkbookFile(t *testing.T, path string, opts ParseOptions) (*domain.Table, error) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return ParseBytes(filepath.Base(path), data, opts)
}

func TestParseWorkbook(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "COA_UAE.xlsx", [][]interface{}{
		{"Country", "Account Code", "Local Currency Amount", "Forex_Rate"},
		{"UAE", "00120", 100, 3.67},
		{"UAE", "00130", 50.5, nil},
	})

	table, err := parseWorkbookFile(t, path, ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, "COA_UAE.xlsx", table.Name)
	assert.Equal(t, []string{"Country", "Account Code", "Local Currency Amount", "Forex_Rate"}, table.Columns)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, domain.Text("UAE"), first["Country"])
	assert.Equal(t, domain.Text("00120"), first["Account Code"], "text codes keep leading zeros")
	assert.Equal(t, domain.Number(100), first["Local Currency Amount"])
	assert.Equal(t, domain.Number(3.67), first["Forex_Rate"])

	assert.True(t, table.Rows[1]["Forex_Rate"].IsEmpty(), "missing cells default to empty")
}

func TestParseWorkbookNormalizedHeaders(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "master_data.xlsx", [][]interface{}{
		{"Country", "ERP  System", " Local Currency Amount "},
		{"KSA", "SAP", 10},
	})

	table, err := parseWorkbookFile(t, path, ParseOptions{NormalizeHeaders: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"country", "erp_system", "local_currency_amount"}, table.Columns)
	assert.Equal(t, domain.Number(10), table.Rows[0]["local_currency_amount"])
}

func TestParseWorkbookHeaderOnly(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "empty.xlsx", [][]interface{}{
		{"Country", "Amount"},
	})

	_, err := parseWorkbookFile(t, path, ParseOptions{})
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestParseBytesDelimited(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"tab separated", "country\tamount\nUAE\t100\nKSA\t10\n"},
		{"comma separated", "country,amount\nUAE,100\nKSA,10\n"},
		{"crlf with bom", "\xEF\xBB\xBFcountry,amount\r\nUAE,100\r\nKSA,10\r\n"},
		{"blank lines skipped", "country,amount\n\nUAE,100\n\nKSA,10\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseBytes("data.csv", []byte(tt.data), ParseOptions{})
			require.NoError(t, err)

			assert.Equal(t, []string{"country", "amount"}, table.Columns)
			require.Len(t, table.Rows, 2)
			assert.Equal(t, "UAE", table.Rows[0].Get("country").String())
			assert.Equal(t, "100", table.Rows[0].Get("amount").String())
			assert.Equal(t, "KSA", table.Rows[1].Get("country").String())
		})
	}
}

func TestParseBytesDelimitedRaggedRows(t *testing.T) {
	data := "a,b,c\n1\n1,2,3,4\n"

	table, err := ParseBytes("ragged.csv", []byte(data), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	assert.True(t, table.Rows[0]["b"].IsEmpty())
	assert.True(t, table.Rows[0]["c"].IsEmpty())
	assert.Len(t, table.Rows[1], 3, "cells beyond the header are dropped")
}

func TestParseBytesErrors(t *testing.T) {
	_, err := ParseBytes("notes.pdf", []byte("x"), ParseOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ParseBytes("empty.csv", []byte("\n\n"), ParseOptions{})
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = ParseBytes("header.csv", []byte("a,b\n"), ParseOptions{})
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = ParseBytes("broken.xlsx", []byte("not a zip"), ParseOptions{})
	assert.Error(t, err)
}

func TestHeaderNames(t *testing.T) {
	cells := []domain.Value{
		domain.Text("Amount"), domain.Text(""), domain.Text("Amount"), domain.Text("Amount"),
	}
	assert.Equal(t, []string{"Amount", "column_2", "Amount_1", "Amount_2"}, headerNames(cells, false))

	tests := []struct {
		name    string
		headers []string
		want    []string
	}{
		{"suffix collides with later header", []string{"a", "a", "a_1"}, []string{"a", "a_1", "a_1_1"}},
		{"suffix skips taken name", []string{"a_1", "a", "a"}, []string{"a_1", "a", "a_2"}},
		{"placeholder collides with later header", []string{"x", "", "column_2"}, []string{"x", "column_2", "column_2_1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := make([]domain.Value, len(tt.headers))
			for i, h := range tt.headers {
				cells[i] = domain.Text(h)
			}
			assert.Equal(t, tt.want, headerNames(cells, false))
		})
	}
}

func TestParseBytesKeepsEveryDuplicateColumn(t *testing.T) {
	table, err := ParseBytes("d.csv", []byte("a,a,a_1\n1,2,3\n"), ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "a_1", "a_1_1"}, table.Columns)
	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Equal(t, "1", row.Get("a").String())
	assert.Equal(t, "2", row.Get("a_1").String())
	assert.Equal(t, "3", row.Get("a_1_1").String())
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "local_currency_amount", NormalizeHeader("Local Currency  Amount"))
	assert.Equal(t, "sub_category", NormalizeHeader("  Sub\tCategory "))
	assert.Equal(t, "forex_rate", NormalizeHeader("Forex_Rate"))
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, '\t', detectDelimiter([]byte("\n\na\tb\n1,2")))
	assert.Equal(t, ',', detectDelimiter([]byte("a,b\n1\t2")))
	assert.Equal(t, ',', detectDelimiter(bytes.Repeat([]byte("\n"), 3)))
}
