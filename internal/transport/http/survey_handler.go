package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"alumnipulse/internal/dataprocessing"
	apierrors "alumnipulse/internal/errors"
	"alumnipulse/internal/exporter"
	custommw "alumnipulse/internal/middleware"
	"alumnipulse/internal/services"
	"alumnipulse/pkg/contracts/domain"
)

// SurveyHandler handles survey upload and report HTTP requests
type SurveyHandler struct {
	service      *services.SurveyService
	conclusions  *services.ConclusionsStore
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *custommw.ValidationMiddleware
	maxBodyBytes int64
}

// NewSurveyHandler creates a new survey handler with RFC 7807 error handling
func NewSurveyHandler(service *services.SurveyService, conclusions *services.ConclusionsStore, maxBodyBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SurveyHandler {
	return &SurveyHandler{
		service:      service,
		conclusions:  conclusions,
		logger:       logger.With(slog.String("component", "survey_handler")),
		errorHandler: errorHandler,
		validate:     custommw.NewValidationMiddleware(logger, errorHandler),
		maxBodyBytes: maxBodyBytes,
	}
}

// uploadForm carries the multipart fields checked before the file is ingested.
type uploadForm struct {
	Filename string `json:"filename" validate:"required,filename"`
}

// Routes returns the survey routes
func (h *SurveyHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Upload)
	r.Get("/", h.List)

	r.Route("/{uploadID}", func(r chi.Router) {
		r.Use(h.UploadCtx)
		r.Get("/", h.GetUpload)
		r.Get("/filters", h.GetFilters)
		r.Get("/report", h.GetReport)
		r.Get("/report/export", h.ExportReport)
		r.Get("/conclusions", h.GetConclusions)
		r.Put("/conclusions", h.PutConclusions)
	})

	return r
}

// UploadCtx validates the uploadID URL parameter
func (h *SurveyHandler) UploadCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "uploadID") == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("uploadID", "Upload ID is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/surveys with a multipart "file" field
func (h *SurveyHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	if err := r.ParseMultipartForm(h.maxBodyBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A survey file is required"))
		return
	}
	defer file.Close()

	if err := h.validate.ValidateStruct(uploadForm{Filename: header.Filename}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	info, err := h.service.Ingest(r.Context(), header.Filename, file)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	candidates, err := h.service.Candidates(r.Context(), info.ID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, struct {
		*services.UploadInfo
		Filters domain.FilterCandidates `json:"filters"`
	}{info, candidates})
}

// List handles GET /api/surveys
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"uploads": h.service.List(),
	})
}

// GetUpload handles GET /api/surveys/{uploadID}
func (h *SurveyHandler) GetUpload(w http.ResponseWriter, r *http.Request) {
	up, err := h.service.Get(chi.URLParam(r, "uploadID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"id":              up.ID,
		"filename":        up.Filename,
		"rows":            up.Frame.NumRows(),
		"columns":         up.Frame.Columns(),
		"header_row":      up.HeaderRow,
		"header_fallback": up.Fallback,
		"program_column":  up.Roles.Program,
		"year_column":     up.Roles.Year,
		"created_at":      up.UploadedAt,
	})
}

// GetFilters handles GET /api/surveys/{uploadID}/filters
func (h *SurveyHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.service.Candidates(r.Context(), chi.URLParam(r, "uploadID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, candidates)
}

// GetReport handles GET /api/surveys/{uploadID}/report?program=&year=
func (h *SurveyHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.renderReport(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, rep)
}

// ExportReport handles GET /api/surveys/{uploadID}/report/export
func (h *SurveyHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.renderReport(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="informe.csv"`)

	if err := exporter.WriteReport(w, *rep); err != nil {
		h.logger.ErrorContext(r.Context(), "report export failed",
			slog.String("error", err.Error()))
	}
}

// GetConclusions handles GET /api/surveys/{uploadID}/conclusions
func (h *SurveyHandler) GetConclusions(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadID")
	if _, err := h.service.Get(uploadID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, h.conclusions.Get(uploadID))
}

// conclusionsRequest is the PUT /conclusions body
type conclusionsRequest struct {
	Text string `json:"text"`
}

// PutConclusions handles PUT /api/surveys/{uploadID}/conclusions
func (h *SurveyHandler) PutConclusions(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadID")
	if _, err := h.service.Get(uploadID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var req conclusionsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	render.JSON(w, r, h.conclusions.Put(uploadID, req.Text))
}

func (h *SurveyHandler) renderReport(r *http.Request) (*domain.Report, error) {
	sel := domain.FilterSelection{
		Program: r.URL.Query().Get("program"),
		Year:    r.URL.Query().Get("year"),
	}
	return h.service.Render(r.Context(), chi.URLParam(r, "uploadID"), sel)
}

// handleServiceError maps service and pipeline errors to API errors
func (h *SurveyHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *dataprocessing.MissingColumnsError

	switch {
	case errors.As(err, &missing):
		h.errorHandler.HandleError(w, r, apierrors.MissingColumnsError(missing.Headers))
	case errors.Is(err, dataprocessing.ErrEmptyTable):
		h.errorHandler.HandleError(w, r, apierrors.ErrEmptySurveyFile)
	case errors.Is(err, services.ErrUploadNotFound):
		h.errorHandler.HandleError(w, r, apierrors.UploadNotFoundError(chi.URLParam(r, "uploadID")))
	case errors.Is(err, services.ErrUnsupportedFormat):
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "UNSUPPORTED_FORMAT", "Unsupported survey file format", err.Error()))
	case errors.Is(err, services.ErrUploadTooLarge):
		h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
	default:
		h.errorHandler.HandleError(w, r, fmt.Errorf("survey request failed: %w", err))
	}
}
