package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/auth"
	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/metrics"
	"github.com/prn-tf/shopcore/internal/service"
)

// AccountHandler serves signup, signin, signout, and permission routes.
type AccountHandler struct {
	accounts     *service.AccountService
	metrics      *metrics.Metrics
	sessionTTL   time.Duration
	cookieSecure bool
	logger       zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *service.AccountService, m *metrics.Metrics, sessionTTL time.Duration, cookieSecure bool, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:     accounts,
		metrics:      m,
		sessionTTL:   sessionTTL,
		cookieSecure: cookieSecure,
		logger:       logger.With().Str("handler", "account").Logger(),
	}
}

// RegisterRoutes registers account routes.
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.handleSignUp)
	r.Post("/signin", h.handleSignIn)
	r.Post("/signout", h.handleSignOut)
	r.Get("/me", h.handleMe)
	r.Put("/users/{id}/permissions", h.handleUpdatePermissions)
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
}

func toUserResponse(u *domain.User) userResponse {
	perms := make([]string, len(u.Permissions))
	for i, p := range u.Permissions {
		perms[i] = string(p)
	}
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Permissions: perms}
}

func (h *AccountHandler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	out, err := h.accounts.SignUp(r.Context(), service.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	h.metrics.RecordMutation("signup", outcomeFor(err))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.setAuthCookie(w, out.Token)
	writeJSON(w, http.StatusCreated, toUserResponse(out.User))
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AccountHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	out, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	h.metrics.RecordMutation("signin", outcomeFor(err))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.setAuthCookie(w, out.Token)
	writeJSON(w, http.StatusOK, toUserResponse(out.User))
}

func (h *AccountHandler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	h.clearAuthCookie(w)
	h.metrics.RecordMutation("signout", "ok")
	writeJSON(w, http.StatusOK, map[string]string{"message": "goodbye"})
}

func (h *AccountHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	user, err := h.accounts.Me(r.Context(), sess)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type updatePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

func (h *AccountHandler) handleUpdatePermissions(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}

	var req updatePermissionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	perms, err := domain.ParsePermissions(req.Permissions)
	if err != nil {
		h.metrics.RecordMutation("update_permissions", outcomeFor(err))
		writeDomainError(w, err)
		return
	}

	sess := auth.SessionFromContext(r.Context())
	user, err := h.accounts.UpdatePermissions(r.Context(), sess, targetID, perms)
	h.metrics.RecordMutation("update_permissions", outcomeFor(err))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AccountHandler) setAuthCookie(w http.ResponseWriter, token string) {
	setAuthCookie(w, token, h.sessionTTL, h.cookieSecure)
}

func (h *AccountHandler) clearAuthCookie(w http.ResponseWriter) {
	clearAuthCookie(w, h.cookieSecure)
}
