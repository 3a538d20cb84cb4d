package services

import "errors"

// Dataset service errors
var (
	// ErrColumnNotFound is returned when a requested column is not declared
	// by the loaded table.
	ErrColumnNotFound = errors.New("column not found")

	// ErrNoMasterDataset is returned when the catalog has no master file.
	ErrNoMasterDataset = errors.New("no master dataset configured")

	// ErrUnknownSummary is returned for summary ids other than the master
	// report levels.
	ErrUnknownSummary = errors.New("unknown summary")
)
