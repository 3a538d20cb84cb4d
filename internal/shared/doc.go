// Package shared holds helpers used across Finora packages that belong to no
// single layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- BufferedSlogHandler and NewTestLogger to capture and assert on slog output
//	- Workbook and CSV fixture writers (WriteWorkbook, WriteCSV)
//	- A ready-made catalog directory with a master workbook (WriteCatalog)
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    dir := testutil.WriteCatalog(t)
//	    // use logger and dir
//	    testutil.AssertNoErrors(t, logs)
//	}
package shared
