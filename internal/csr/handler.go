package csr

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
	router.Route("/csr", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/date/{date}", h.ByDate)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/upload", h.UploadImages)
			r.Post("/admin", h.CreateSections)
			r.Put("/admin/{id}", h.Update)
			r.Delete("/admin/all", h.DeleteAll)
			r.Delete("/admin/date/{date}", h.DeleteByDate)
			r.Delete("/admin/{id}", h.Delete)
		})
	})
}

func (h *Handler) UploadImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	paths, err := h.service.UploadImages(r.Context(), r.MultipartForm.File["files"])
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "csr images uploaded", "count", len(paths))
	httputil.RespondWithJSON(w, http.StatusOK, UploadResponse{Count: len(paths), Paths: paths})
}

func (h *Handler) CreateSections(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	sections, err := h.service.CreateSections(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordCSRSectionsCreated(r.Context(), len(sections))
	h.logger.InfoContext(r.Context(), "csr sections created", "count", len(sections))
	httputil.RespondWithJSON(w, http.StatusCreated, sections)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sections, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, sections)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid activity id")
		return
	}

	section, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, section)
}

func (h *Handler) ByDate(w http.ResponseWriter, r *http.Request) {
	day, err := httputil.PathParam(r, "date")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid date")
		return
	}
	sections, err := h.service.ByDate(r.Context(), day)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, sections)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid activity id")
		return
	}

	var req UpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	section, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, section)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid activity id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "csr section deleted", "section_id", id)
	httputil.RespondWithMessage(w, http.StatusOK, "Activity deleted", nil)
}

func (h *Handler) DeleteByDate(w http.ResponseWriter, r *http.Request) {
	day, err := httputil.PathParam(r, "date")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid date")
		return
	}
	deleted, err := h.service.DeleteByDate(r.Context(), day)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "csr sections deleted by date", "date", day, "count", deleted)
	httputil.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("Deleted %d activities from %s", deleted, day), map[string]interface{}{
		"deleted": deleted,
	})
}

func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.DeleteAll(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.WarnContext(r.Context(), "all csr sections deleted", "count", deleted)
	httputil.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("Deleted %d activities", deleted), map[string]interface{}{
		"deleted": deleted,
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSectionNotFound), errors.Is(err, ErrNoneOnDate):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		h.logger.InfoContext(r.Context(), "invalid input", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
