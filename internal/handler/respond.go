// Package handler provides the HTTP adapter for the shopcore mutation API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prn-tf/shopcore/internal/domain"
)

// errorResponse is the JSON body for every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeDomainError maps a domain error onto an HTTP status and writes it.
func writeDomainError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor maps a domain error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrOwnershipViolation):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrCartItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, domain.ErrInvalidOrExpiredToken),
		errors.Is(err, domain.ErrUnknownPermission):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// outcomeFor maps a mutation result to a metrics outcome label.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrOwnershipViolation):
		return "denied"
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrCartItemNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUpstream):
		return "error"
	default:
		return "invalid"
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeBadRequest reports a malformed request body.
func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
