package health

import (
	"net/http"

	"github.com/kishorebabuysk/VF-Backend/common/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	checker *Checker
}

func NewHandler(checker *Checker) *Handler {
	return &Handler{checker: checker}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.Root)
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithMessage(w, http.StatusOK, "backend running", nil)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, Response{Status: "ok"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.Check(r.Context()); err != nil {
		h.checker.logger.WarnContext(r.Context(), "not ready", "error", err)
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, Response{Status: "unavailable", Error: "database unreachable"})
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, Response{Status: "ready"})
}
