package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"finora/internal/dataprocessing"
	"finora/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StreamWriter writes CSV records to an io.Writer
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and the header row and returns a
// writer for the remaining records.
func NewStreamWriter(w io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	// BOM helps Excel recognise UTF-8
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes buffered records
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	return s.writer.Error()
}

// WriteCSV writes the visible columns of view, followed by its totals row.
// Currency cells are written as formatted in the view unless opts.Raw is set,
// in which case they are plain two-decimal numbers.
func WriteCSV(w io.Writer, view *domain.TableView, opts Options) error {
	columns := view.ColumnNames()

	sw, err := NewStreamWriter(w, columns, opts.BOMPrefix)
	if err != nil {
		return err
	}

	for i, row := range view.Rows {
		record := row
		if opts.Raw && i < len(view.Records) {
			record = rawRecord(view, i)
		}
		if err := sw.WriteRecord(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if len(view.Totals) > 0 {
		totals := view.Totals
		if opts.Raw {
			totals = rawTotals(view)
		}
		if err := sw.WriteRecord(totals); err != nil {
			return fmt.Errorf("failed to write totals: %w", err)
		}
	}

	return sw.Close()
}

func rawRecord(view *domain.TableView, i int) []string {
	record := make([]string, len(view.Columns))
	for c, col := range view.Columns {
		v := view.Records[i].Get(col.Name)
		if col.Currency && !v.IsEmpty() {
			if f, ok := dataprocessing.ParseAmountOK(v); ok {
				record[c] = formatFloat(f)
				continue
			}
		}
		record[c] = view.Rows[i][c]
	}
	return record
}

func rawTotals(view *domain.TableView) []string {
	totals := append([]string{}, view.Totals...)
	for c, col := range view.Columns {
		if col.Currency {
			totals[c] = formatFloat(view.Sums[col.Name])
		}
	}
	if len(totals) > 0 {
		totals[0] = view.Totals[0]
	}
	return totals
}
