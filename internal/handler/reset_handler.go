package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/metrics"
	"github.com/prn-tf/shopcore/internal/service"
)

// ResetHandler serves the password reset routes.
type ResetHandler struct {
	resets       *service.ResetService
	metrics      *metrics.Metrics
	sessionTTL   time.Duration
	cookieSecure bool
	logger       zerolog.Logger
}

// NewResetHandler creates a new ResetHandler.
func NewResetHandler(resets *service.ResetService, m *metrics.Metrics, sessionTTL time.Duration, cookieSecure bool, logger zerolog.Logger) *ResetHandler {
	return &ResetHandler{
		resets:       resets,
		metrics:      m,
		sessionTTL:   sessionTTL,
		cookieSecure: cookieSecure,
		logger:       logger.With().Str("handler", "reset").Logger(),
	}
}

// RegisterRoutes registers reset routes.
func (h *ResetHandler) RegisterRoutes(r chi.Router) {
	r.Post("/reset/request", h.handleRequestReset)
	r.Post("/reset", h.handleResetPassword)
}

type requestResetRequest struct {
	Email string `json:"email"`
}

func (h *ResetHandler) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	var req requestResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" {
		writeBadRequest(w, "email is required")
		return
	}

	err := h.resets.RequestReset(r.Context(), req.Email)
	h.metrics.RecordMutation("request_reset", outcomeFor(err))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "thanks"})
}

type resetPasswordRequest struct {
	ResetToken      string `json:"reset_token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *ResetHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.ResetToken == "" || req.Password == "" {
		writeBadRequest(w, "reset_token and password are required")
		return
	}

	out, err := h.resets.ResetPassword(r.Context(), req.ResetToken, req.Password, req.ConfirmPassword)
	h.metrics.RecordMutation("reset_password", outcomeFor(err))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	setAuthCookie(w, out.Token, h.sessionTTL, h.cookieSecure)
	writeJSON(w, http.StatusOK, toUserResponse(out.User))
}
