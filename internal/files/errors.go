package files

import "errors"

var (
	// ErrNotInCatalog is returned for file names the catalog does not list.
	ErrNotInCatalog = errors.New("file is not in the catalog")

	// ErrFetchFailed is returned when a source cannot deliver a file.
	ErrFetchFailed = errors.New("fetch failed")
)
