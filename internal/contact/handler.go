package contact

import (
	"errors"
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

func (h *Handler) RegisterRoutes(router chi.Router, guard, limit func(http.Handler) http.Handler) {
	router.Route("/contact", func(r chi.Router) {
		r.With(limit).Post("/", h.Create)
		r.With(guard).Get("/", h.List)
		r.With(guard).Delete("/bulk", h.DeleteMany)
		r.With(guard).Delete("/{id}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	contact, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordContactReceived(r.Context())
	h.logger.InfoContext(r.Context(), "contact received", "contact_id", contact.ID)
	httputil.RespondWithJSON(w, http.StatusCreated, contact)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, contacts)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "contact deleted", "contact_id", id)
	httputil.RespondWithMessage(w, http.StatusOK, "Contact deleted", nil)
}

func (h *Handler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	deleted, err := h.service.DeleteMany(r.Context(), req.ContactIDs)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "contacts deleted", "count", deleted)
	httputil.RespondWithJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrContactNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
