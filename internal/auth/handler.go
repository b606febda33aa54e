package auth

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
	router.Route("/admin", func(r chi.Router) {
		r.With(limit).Post("/login", h.Login)
		r.With(limit).Post("/forgot-password", h.ForgotPassword)
		r.With(limit).Post("/verify-otp", h.VerifyOTP)
		r.With(limit).Post("/reset-password", h.ResetPassword)
		r.With(guard).Get("/me", h.Me)
		r.With(guard).Post("/change-password", h.ChangePassword)
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp, err := h.service.Login(r.Context(), req.Email, req.Password)
	h.metrics.RecordLogin(r.Context(), err == nil)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "admin logged in", "email", req.Email)
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	admin, ok := AdminFromContext(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, ErrInvalidToken.Error())
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, admin)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	admin, ok := AdminFromContext(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, ErrInvalidToken.Error())
		return
	}

	var req ChangePasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), admin, req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "admin password changed", "email", admin.Email)
	httputil.RespondWithMessage(w, http.StatusOK, "password changed successfully", nil)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithMessage(w, http.StatusOK, "otp sent to registered email", nil)
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	token, err := h.service.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithMessage(w, http.StatusOK, "otp verified", map[string]interface{}{
		"reset_token": token,
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordPasswordReset(r.Context())
	httputil.RespondWithMessage(w, http.StatusOK, "password reset successfully", nil)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, validation.ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrEmailNotRegistered):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrEmailExists):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrWrongPassword),
		errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrInvalidOTP),
		errors.Is(err, ErrOTPExpired),
		errors.Is(err, ErrInvalidResetToken),
		errors.Is(err, ErrResetTokenExpired):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
