package dataprocessing

import "errors"

var (
	// ErrNoRows is returned when a file has a header but no data rows.
	ErrNoRows = errors.New("no rows found in file")

	// ErrNoHeader is returned when a file has no non-empty first row.
	ErrNoHeader = errors.New("no header row found in file")

	// ErrUnsupportedFormat is returned for file extensions the parser cannot read.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrUnknownPolicy is returned when a conflict policy name is not recognised.
	ErrUnknownPolicy = errors.New("unknown conflict policy")
)
