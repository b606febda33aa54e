package job

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

type Handler struct {
	service  Service
	validate *validation.Validator
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validation.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

// RegisterRoutes mounts /jobs. Static paths are registered before /{id}.
func (h *Handler) RegisterRoutes(router chi.Router, guard, limit func(http.Handler) http.Handler) {
	router.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.SearchJobs)
		r.With(guard).Post("/", h.CreateJob)
		r.With(guard).Delete("/", h.DeleteAllJobs)
		r.With(guard).Get("/all", h.ListJobs)
		r.With(guard).Delete("/bulk", h.DeleteJobs)
		r.Get("/{id}", h.GetJob)
		r.With(guard).Put("/{id}", h.UpdateJob)
		r.With(guard).Delete("/{id}", h.DeleteJob)
	})
}

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "creating job", "title", req.Title)
	job, err := h.service.CreateJob(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordJobCreated(r.Context())
	httputil.RespondWithJSON(w, http.StatusCreated, job)
}

func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid job id")
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

	h.logger.InfoContext(r.Context(), "updating job", "job_id", id)
	job, err := h.service.UpdateJob(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, job)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := h.service.GetPublicJob(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, job)
}

func (h *Handler) SearchJobs(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.QueryInt(r, "page", 1)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := httputil.QueryInt(r, "limit", 10)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query().Get("q")

	result, err := h.service.SearchJobs(r.Context(), q, page, limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordJobSearch(r.Context(), q != "")
	httputil.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	skip, err := httputil.QueryInt(r, "skip", 0)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := httputil.QueryInt(r, "limit", MaxPageSize)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobs, err := h.service.ListJobs(r.Context(), skip, limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, jobs)
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting job", "job_id", id)
	if err := h.service.DeleteJob(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithMessage(w, http.StatusOK, "job deleted successfully", nil)
}

func (h *Handler) DeleteJobs(w http.ResponseWriter, r *http.Request) {
	ids, err := httputil.QueryIDs(r, "ids")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	deleted, err := h.service.DeleteJobs(r.Context(), ids)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "bulk deleted jobs", "count", deleted)
	httputil.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("deleted %d jobs", deleted), map[string]interface{}{
		"deleted": deleted,
	})
}

func (h *Handler) DeleteAllJobs(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.DeleteAllJobs(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.WarnContext(r.Context(), "deleted all jobs", "count", deleted)
	httputil.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("deleted %d jobs", deleted), map[string]interface{}{
		"deleted": deleted,
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrJobNotFound) {
		h.logger.InfoContext(r.Context(), "job not found")
		httputil.RespondWithError(w, http.StatusNotFound, "job not found")
		return
	}
	if errors.Is(err, ErrInvalidInput) {
		h.logger.InfoContext(r.Context(), "invalid input", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.ErrorContext(r.Context(), "internal error", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}
