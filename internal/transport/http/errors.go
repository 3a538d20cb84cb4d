package http

import (
	"errors"
	"fmt"

	apierrors "finora/internal/errors"
	"finora/internal/exporter"
	"finora/internal/files"
	"finora/internal/services"
)

// toAPIError maps service errors to API errors. file names the dataset the
// request was about and is echoed back in load failures.
func toAPIError(err error, file string) error {
	var appErr *apierrors.AppError

	switch {
	case errors.Is(err, files.ErrNotInCatalog):
		return apierrors.FileNotFoundError(file)
	case errors.Is(err, services.ErrUnknownSummary):
		return apierrors.NewWithDetails(apierrors.ErrSummaryNotFound.StatusCode,
			apierrors.CodeSummaryNotFound, apierrors.ErrSummaryNotFound.Message, file)
	case errors.Is(err, services.ErrColumnNotFound):
		return apierrors.NotFoundError("column")
	case errors.Is(err, services.ErrNoMasterDataset):
		return apierrors.NotFoundError("master dataset")
	case errors.Is(err, exporter.ErrUnsupportedFormat):
		return apierrors.ErrValidation("format", fmt.Sprintf("format must be one of: %s, %s", exporter.FormatCSV, exporter.FormatXLSX))
	case errors.As(err, &appErr):
		switch appErr.Type {
		case apierrors.ErrTypeNetwork, apierrors.ErrTypeParsing, apierrors.ErrTypeStorage:
			if f, ok := appErr.Context["file"].(string); ok && f != "" {
				file = f
			}
			return apierrors.DatasetLoadError(appErr.Message, file)
		case apierrors.ErrTypeValidation:
			return apierrors.NewValidationError(appErr.Message)
		}
	}
	return err
}
