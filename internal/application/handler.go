package application

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

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
	router.Route("/admin/applications", func(r chi.Router) {
		r.With(limit).Post("/", h.Submit)
		r.With(guard).Get("/", h.List)
		r.With(guard).Get("/all", h.ListAll)
		r.With(guard).Delete("/bulk", h.DeleteMany)
		r.With(guard).Get("/{id}", h.Get)
		r.With(guard).Patch("/{id}/status", h.UpdateStatus)
		r.With(guard).Delete("/{id}", h.Delete)
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.logger.InfoContext(r.Context(), "invalid multipart form", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, uploads, err := parseSubmitForm(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "submitting application", "job_id", req.JobID, "experience_level", req.ExperienceLevel)
	app, err := h.service.Submit(r.Context(), req, uploads)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordApplicationSubmitted(r.Context(), app.ExperienceLevel)
	h.logger.InfoContext(r.Context(), "application submitted", "application_id", app.ID, "job_id", app.JobID)
	httputil.RespondWithJSON(w, http.StatusCreated, app)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	jobID, err := httputil.QueryInt(r, "job_id", 0)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.List(r.Context(), Filter{
		JobID:  jobID,
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
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

	apps, err := h.service.ListAll(r.Context(), skip, limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, apps)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	app, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, app)
}

// UpdateStatus takes the status from a JSON body or, failing that, ?status=.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	status := r.URL.Query().Get("status")
	var req StatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Status) != "" {
		status = req.Status
	}

	change, err := h.service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordApplicationStatusChanged(r.Context(), change.NewStatus)
	h.logger.InfoContext(r.Context(), "application status changed",
		"application_id", id,
		"old_status", change.OldStatus,
		"new_status", change.NewStatus,
	)
	httputil.RespondWithJSON(w, http.StatusOK, change)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordApplicationsDeleted(r.Context(), 1)
	h.logger.InfoContext(r.Context(), "application deleted", "application_id", id)
	httputil.RespondWithMessage(w, http.StatusOK, "Application deleted successfully", nil)
}

func (h *Handler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	ids, err := decodeIDs(r)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deleted, err := h.service.DeleteMany(r.Context(), ids)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordApplicationsDeleted(r.Context(), deleted)
	h.logger.InfoContext(r.Context(), "bulk deleted applications", "requested", len(ids), "deleted", deleted)
	httputil.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("Deleted %d applications", deleted), map[string]interface{}{
		"deleted": deleted,
	})
}

// decodeIDs accepts either a bare JSON array or {"application_ids": [...]}.
func decodeIDs(r *http.Request) ([]int, error) {
	var raw json.RawMessage
	if err := httputil.DecodeJSON(r, &raw); err != nil {
		return nil, err
	}
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		var ids []int
		err := json.Unmarshal(raw, &ids)
		return ids, err
	}
	var req BulkDeleteRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	return req.ApplicationIDs, nil
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrApplicationNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "application not found")
	case errors.Is(err, ErrJobNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, ErrExperienceRequired):
		h.logger.InfoContext(r.Context(), "experience required", "error", err)
		httputil.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidInput):
		h.logger.InfoContext(r.Context(), "invalid input", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
