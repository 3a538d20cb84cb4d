package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// MasterHeader is the header row of the master fixture workbook, spelled the
// way finance exports it before normalization.
var MasterHeader = []interface{}{
	"Country", "ERP System", "Local Currency", "Foreign Currency", "Group Code",
	"Account Code", "Account Type", "Category", "Sub Category",
	"Local Currency Amount", "Global Currency Amount", "Forex_Rate",
}

// MasterRows is a small chart-of-accounts extract covering two subsidiaries
// that share a group account.
var MasterRows = [][]interface{}{
	{"UAE", "SAP", "AED", "USD", "G100", "A100", "Asset", "Cash", "Bank", 100, 27.25, 3.67},
	{"UAE", "SAP", "AED", "USD", "G100", "A101", "Asset", "Cash", "Bank", 50, 13.6, 3.67},
	{"KSA", "Oracle", "SAR", "USD", "G100", "K200", "Asset", "Cash", "Bank", 10, 2.67, 3.75},
	{"PAK", "SAP", "PKR", "EUR", "G200", "P300", "Expense", "Opex", "Rent", "1,000", 3.3, 303},
}

// WriteWorkbook saves a single-sheet workbook built from rows and returns its path.
func WriteWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				t.Fatalf("set cell %s: %v", cell, err)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook %s: %v", path, err)
	}
	return path
}

// WriteMasterWorkbook writes the master fixture as master_data.xlsx.
func WriteMasterWorkbook(t *testing.T, dir string) string {
	t.Helper()
	rows := append([][]interface{}{MasterHeader}, MasterRows...)
	return WriteWorkbook(t, dir, "master_data.xlsx", rows)
}

// WriteCSV writes lines joined by newlines to dir/name and returns the path.
func WriteCSV(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteCatalog creates a data directory holding the master workbook, a
// country workbook and a CSV file.
func WriteCatalog(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	WriteMasterWorkbook(t, dir)
	WriteWorkbook(t, dir, "COA_UAE.xlsx", [][]interface{}{
		{"Account Code", "Account Name", "Category", "Forex_Rate"},
		{"A100", "Cash at bank", "Assets", 3.67},
		{"A101", "Petty cash", "Assets", 3.67},
		{"E500", "Rent", "Expenses", 3.67},
	})
	WriteCSV(t, dir, "COA_PAK.csv",
		"Account Code\tAccount Name\tCategory",
		"P300\tRent\tExpenses",
		"P301\tUtilities\tExpenses",
	)
	return dir
}
