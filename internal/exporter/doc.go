// Package exporter writes table views and master summaries as CSV or XLSX.
//
// Exports go to an io.Writer: the HTTP layer streams them as downloads and
// the CLI writes them to files under the exports directory. CSV output can
// carry a UTF-8 BOM for Excel; XLSX output is produced with the excelize
// stream writer and keeps currency cells numeric.
//
// Example usage:
//
//	format, err := exporter.ParseFormat("xlsx")
//	err = exporter.Write(w, view, format, exporter.Options{SheetName: "Summary"})
package exporter
