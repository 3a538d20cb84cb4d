package exporter

import (
	"io"
	"log/slog"

	"finora/pkg/contracts/domain"
)

// Options configures an export.
type Options struct {
	// BOMPrefix adds a UTF-8 BOM to CSV output for Excel.
	BOMPrefix bool
	// Raw writes CSV currency cells as plain numbers instead of display text.
	Raw bool
	// SheetName names the XLSX sheet. Empty means "Data".
	SheetName string
}

// Write exports view in the given format.
func Write(w io.Writer, view *domain.TableView, format Format, opts Options) error {
	slog.Debug("Exporting view",
		slog.String("title", view.Title),
		slog.String("format", string(format)),
		slog.Int("rows", len(view.Rows)))

	switch format {
	case FormatCSV:
		return WriteCSV(w, view, opts)
	case FormatXLSX:
		return WriteXLSX(w, view, opts)
	default:
		return ErrUnsupportedFormat
	}
}
