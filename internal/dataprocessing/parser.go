package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"finora/pkg/contracts/domain"
)

// Format is a supported input file format.
type Format string

const (
	FormatDelimited Format = "delimited"
	FormatWorkbook  Format = "workbook"
)

// ParseOptions controls how a file is turned into a table.
type ParseOptions struct {
	// NormalizeHeaders lowercases header names and replaces whitespace runs
	// with underscores. Used for the master dataset.
	NormalizeHeaders bool
	// Sheet selects a workbook sheet by name. Empty means the first sheet.
	Sheet string
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeHeader turns "Local Currency  Amount" into "local_currency_amount".
func NormalizeHeader(h string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "_")
}

// DetectFormat picks the parser from the file extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt":
		return FormatDelimited, nil
	case ".xlsx", ".xlsm":
		return FormatWorkbook, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ParseBytes parses file content; name is only used to pick the format and
// to label the resulting table.
func ParseBytes(name string, data []byte, opts ParseOptions) (*domain.Table, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	var grid [][]domain.Value
	switch format {
	case FormatDelimited:
		grid, err = readDelimited(data)
	case FormatWorkbook:
		grid, err = readWorkbook(data, opts.Sheet)
	}
	if err != nil {
		return nil, err
	}

	table, err := buildTable(name, grid, opts)
	if err != nil {
		return nil, err
	}

	slog.Debug("Parsed table",
		slog.String("file", name),
		slog.String("format", string(format)),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", len(table.Rows)))

	return table, nil
}

// readDelimited reads comma or tab separated text. The delimiter is tab when
// the header line contains one, comma otherwise.
func readDelimited(data []byte) ([][]domain.Value, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var grid [][]domain.Value
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read delimited text: %w", err)
		}
		row := make([]domain.Value, len(record))
		for i, cell := range record {
			row[i] = domain.Text(strings.TrimRight(cell, "\r"))
		}
		grid = append(grid, row)
	}
	return grid, nil
}

func detectDelimiter(data []byte) rune {
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if bytes.ContainsRune(line, '\t') {
			return '\t'
		}
		return ','
	}
	return ','
}

// readWorkbook reads one sheet. Cells stored as numbers become numeric values;
// string cells stay text so codes like "00120" keep their leading zeros.
func readWorkbook(data []byte, sheet string) ([][]domain.Value, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("no sheets found in workbook")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	grid := make([][]domain.Value, len(rows))
	for i, cells := range rows {
		row := make([]domain.Value, len(cells))
		for j, raw := range cells {
			row[j] = workbookCell(f, sheet, j, i, raw)
		}
		grid[i] = row
	}
	return grid, nil
}

func workbookCell(f *excelize.File, sheet string, col, row int, raw string) domain.Value {
	if raw == "" {
		return domain.Value{}
	}
	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.Text(raw)
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return domain.Text(raw)
	}
	switch typ, _ := f.GetCellType(sheet, axis); typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		return domain.Number(num)
	default:
		return domain.Text(raw)
	}
}

// buildTable takes the first non-blank row as the header and the remaining
// non-blank rows as data. Cells beyond the header width are dropped.
func buildTable(name string, grid [][]domain.Value, opts ParseOptions) (*domain.Table, error) {
	start := -1
	for i, row := range grid {
		if !blankRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrNoHeader
	}

	columns := headerNames(grid[start], opts.NormalizeHeaders)

	table := &domain.Table{Name: name, Columns: columns}
	for _, cells := range grid[start+1:] {
		if blankRow(cells) {
			continue
		}
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = domain.Value{}
			}
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, ErrNoRows
	}
	return table, nil
}

// headerNames names every column: blank headers become column_N and repeated
// names get the first free numeric suffix (name, name_1, name_2). Every
// emitted name is reserved, so a suffixed name never collides with a later
// header spelled the same way.
func headerNames(cells []domain.Value, normalize bool) []string {
	names := make([]string, len(cells))
	used := make(map[string]bool, len(cells))
	next := make(map[string]int, len(cells))
	for i, cell := range cells {
		name := strings.TrimSpace(cell.String())
		if normalize {
			name = NormalizeHeader(name)
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if used[name] {
			base := name
			for n := next[base] + 1; ; n++ {
				candidate := fmt.Sprintf("%s_%d", base, n)
				if !used[candidate] {
					next[base] = n
					name = candidate
					break
				}
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func blankRow(cells []domain.Value) bool {
	for _, c := range cells {
		if strings.TrimSpace(c.String()) != "" {
			return false
		}
	}
	return true
}
