package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"finora/internal/dataprocessing"
	apierrors "finora/internal/errors"
	"finora/internal/exporter"
	appmiddleware "finora/internal/middleware"
	"finora/internal/services"
	"finora/pkg/contracts/domain"
)

// SummaryRequest is the body of POST /api/master/summary
type SummaryRequest struct {
	Filters domain.Filters `json:"filters" validate:"omitempty,dive,keys,column,endkeys,max=10000"`
	Policy  string         `json:"policy" validate:"omitempty,oneof=first_seen blank_on_conflict"`
}

// Bind implements render.Binder
func (s *SummaryRequest) Bind(r *http.Request) error {
	s.Filters = cleanFilters(s.Filters)
	return nil
}

var conflictPolicies = []string{
	string(dataprocessing.PolicyFirstSeen),
	string(dataprocessing.PolicyBlankOnConflict),
}

// MasterHandler serves the master dataset summaries
type MasterHandler struct {
	service      DatasetService
	validator    *appmiddleware.ValidationMiddleware
	query        *appmiddleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewMasterHandler creates a new master handler
func NewMasterHandler(service DatasetService, validator *appmiddleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *MasterHandler {
	return &MasterHandler{
		service:      service,
		validator:    validator,
		query:        appmiddleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "master_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the master routes
func (h *MasterHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.validator.ValidateRequest).Post("/summary", h.GetSummary)
	r.Get("/summary", h.GetSummary)
	r.Get("/summary/{summary}/export.{format}", h.ExportSummary)

	return r
}

// GetSummary handles GET and POST /api/master/summary. GET reads filters and
// policy from the query string, POST from a JSON body.
func (h *MasterHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest

	if r.Method == http.MethodPost && r.ContentLength != 0 {
		if err := render.Bind(r, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	} else {
		req.Filters = parseQueryFilters(r.URL.Query())
		req.Policy = r.URL.Query().Get("policy")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.GetMasterReport(r.Context(), req.Filters, req.Policy)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to build master report",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, toAPIError(err, "master"))
		return
	}

	for _, s := range report.Summaries {
		for col, n := range s.Conflicts {
			h.logger.DebugContext(r.Context(), "summary hid differing values",
				slog.String("summary", s.ID),
				slog.String("column", col),
				slog.Int("groups", n))
		}
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   report,
	})
}

// ExportSummary handles GET /api/master/summary/{summary}/export.{format}
func (h *MasterHandler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	summary := chi.URLParam(r, "summary")

	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, summary))
		return
	}
	policy, ok := h.query.ValidateEnum(w, r, "policy", conflictPolicies, string(dataprocessing.PolicyFirstSeen))
	if !ok {
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
		Summary: summary,
		Format:  format,
		Filters: parseQueryFilters(r.URL.Query()),
		Policy:  policy,
		BOM:     bom,
		Raw:     raw,
	}
	writeExport(w, r, h.service, req, h.errorHandler, h.logger, summary)
}
