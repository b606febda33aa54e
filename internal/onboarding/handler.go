package onboarding

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kishorebabuysk/VF-Backend/common/httputil"
	"github.com/kishorebabuysk/VF-Backend/internal/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

const defaultMaxUpload = 32 << 20

type Handler struct {
	service   Service
	validate  *validation.Validator
	logger    *slog.Logger
	metrics   *metrics.Metrics
	maxUpload int64
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &Handler{
		service:   service,
		validate:  validation.New(),
		logger:    logger,
		metrics:   metrics,
		maxUpload: maxUpload,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router, guard, limit func(http.Handler) http.Handler) {
	router.Route("/admin/onboarding", func(r chi.Router) {
		r.With(limit).Post("/", h.Create)
		r.With(guard).Get("/", h.List)
		r.With(guard).Delete("/bulk-delete", h.DeleteMany)
		r.With(guard).Get("/{id}", h.Get)
		r.With(guard).Put("/{id}", h.Update)
		r.With(guard).Delete("/{id}", h.Delete)
		r.Post("/{id}/upload-documents", h.UploadDocuments)
		r.With(guard).Get("/{id}/documents", h.Documents)
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Request, bool) {
	var req Request
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if err := h.validate.Struct(&req); err != nil {
		h.handleServiceError(w, r, err)
		return req, false
	}
	return req, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	o, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordOnboardingSubmitted(r.Context(), o.ExperienceType)
	h.logger.InfoContext(r.Context(), "onboarding submitted", "onboarding_id", o.ID, "experience_type", o.ExperienceType)
	httputil.RespondWithJSON(w, http.StatusCreated, o)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid onboarding id")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	o, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "onboarding updated", "onboarding_id", id)
	httputil.RespondWithJSON(w, http.StatusOK, o)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid onboarding id")
		return
	}

	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, o)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid onboarding id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "onboarding deleted", "onboarding_id", id)
	httputil.RespondWithMessage(w, http.StatusOK, "Onboarding deleted permanently", map[string]interface{}{
		"onboarding_id": id,
	})
}

func (h *Handler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	ids, err := httputil.QueryIDs(r, "onboarding_ids")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid onboarding id")
		return
	}

	deleted, err := h.service.DeleteMany(r.Context(), ids)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "bulk deleted onboardings", "requested", len(ids), "deleted", deleted)
	httputil.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("Deleted %d onboardings successfully", deleted), map[string]interface{}{
		"deleted": deleted,
	})
}

// UploadDocuments reads parallel document_types and files lists. Bracketed
// keys are accepted as sent by some form libraries.
func (h *Handler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid onboarding id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.logger.InfoContext(r.Context(), "invalid multipart form", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := r.MultipartForm
	docTypes := append(form.Value["document_types"], form.Value["document_types[]"]...)
	files := append(form.File["files"], form.File["files[]"]...)

	docs, err := h.service.UploadDocuments(r.Context(), id, docTypes, files)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	message := "No documents uploaded"
	if len(docs) > 0 {
		message = "Documents uploaded successfully"
		h.metrics.RecordDocumentsUploaded(r.Context(), len(docs))
		h.logger.InfoContext(r.Context(), "onboarding documents uploaded", "onboarding_id", id, "count", len(docs))
	}
	httputil.RespondWithJSON(w, http.StatusOK, UploadResponse{
		Message:   message,
		Count:     len(docs),
		Documents: docs,
	})
}

func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid onboarding id")
		return
	}

	resp, err := h.service.Documents(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrOnboardingNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "onboarding not found")
	case errors.Is(err, ErrOnboardingExists):
		h.logger.InfoContext(r.Context(), "duplicate onboarding")
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrExperienceRequired):
		httputil.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrDocumentMismatch), errors.Is(err, ErrInvalidInput):
		h.logger.InfoContext(r.Context(), "invalid input", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
