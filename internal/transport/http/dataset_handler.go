package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "finora/internal/errors"
	"finora/internal/exporter"
	appmiddleware "finora/internal/middleware"
	"finora/internal/services"
	"finora/pkg/contracts/domain"
)

// ViewRequest is the body of POST /api/files/{name}/view
type ViewRequest struct {
	Filters domain.Filters `json:"filters" validate:"omitempty,dive,keys,column,endkeys,max=10000"`
}

// Bind implements render.Binder
func (v *ViewRequest) Bind(r *http.Request) error {
	v.Filters = cleanFilters(v.Filters)
	return nil
}

// DatasetHandler serves catalog files as filterable tables
type DatasetHandler struct {
	service      DatasetService
	validator    *appmiddleware.ValidationMiddleware
	query        *appmiddleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service DatasetService, validator *appmiddleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		validator:    validator,
		query:        appmiddleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListFiles)

	r.Route("/{name}", func(r chi.Router) {
		r.Use(h.FileCtx)
		r.Get("/", h.GetView)
		r.With(h.validator.ValidateRequest).Post("/view", h.PostView)
		r.Get("/columns/{column}/values", h.GetColumnValues)
		r.Get("/export.{format}", h.Export)
	})

	return r
}

// FileCtx rejects file names that could address anything outside the catalog
func (h *DatasetHandler) FileCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := fileParam(r)
		if err := h.validator.ValidateVar("name", name, "filename"); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// fileParam returns the unescaped {name} path parameter.
func fileParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

// ListFiles handles GET /api/files
func (h *DatasetHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	list := h.service.ListFiles(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   list,
		"count":  len(list.Files),
	})
}

// GetView handles GET /api/files/{name}
func (h *DatasetHandler) GetView(w http.ResponseWriter, r *http.Request) {
	h.renderView(w, r, fileParam(r), parseQueryFilters(r.URL.Query()))
}

// PostView handles POST /api/files/{name}/view
func (h *DatasetHandler) PostView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if r.ContentLength != 0 {
		if err := render.Bind(r, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
		if err := h.validator.ValidateStruct(&req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	}
	h.renderView(w, r, fileParam(r), req.Filters)
}

func (h *DatasetHandler) renderView(w http.ResponseWriter, r *http.Request, name string, filters domain.Filters) {
	view, err := h.service.GetView(r.Context(), name, filters)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to build view",
			slog.String("file", name),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, toAPIError(err, name))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"file":   name,
		"data":   view,
	})
}

// GetColumnValues handles GET /api/files/{name}/columns/{column}/values
func (h *DatasetHandler) GetColumnValues(w http.ResponseWriter, r *http.Request) {
	name := fileParam(r)
	column := chi.URLParam(r, "column")

	values, err := h.service.GetColumnValues(r.Context(), name, column)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, name))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"column": column,
		"data":   values,
		"count":  len(values),
	})
}

// Export handles GET /api/files/{name}/export.{format}
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	name := fileParam(r)

	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, name))
		return
	}
	bom, ok := h.query.ValidateBool(w, r, "bom", false)
	if !ok {
		return
	}
	raw, ok := h.query.ValidateBool(w, r, "raw", false)
	if !ok {
		return
	}

	req := services.ExportRequest{
		File:    name,
		Format:  format,
		Filters: parseQueryFilters(r.URL.Query()),
		BOM:     bom,
		Raw:     raw,
	}
	writeExport(w, r, h.service, req, h.errorHandler, h.logger, name)
}

// writeExport renders the export into memory first so that a failure can
// still be reported as a problem response.
func writeExport(w http.ResponseWriter, r *http.Request, service DatasetService, req services.ExportRequest,
	errorHandler *apierrors.ErrorHandler, logger *slog.Logger, subject string) {
	var buf bytes.Buffer
	fileName, err := service.Export(r.Context(), req, &buf)
	if err != nil {
		errorHandler.HandleError(w, r, toAPIError(err, subject))
		return
	}

	logger.InfoContext(r.Context(), "export served",
		slog.String("file_name", fileName),
		slog.Int("bytes", buf.Len()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	w.Header().Set("Content-Type", req.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
