package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, mail, etc.).
// Every failure kind is terminal for the current operation; nothing here
// is retried by the mutation layer.

var (
	// ===========================================
	// Session / Authentication Errors
	// ===========================================

	// ErrUnauthenticated indicates the request carries no resolvable user.
	ErrUnauthenticated = errors.New("you must be signed in")

	// ErrInvalidToken indicates a malformed or unsigned bearer token.
	ErrInvalidToken = errors.New("invalid bearer token")

	// ErrInvalidCredentials indicates a signin email/password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ===========================================
	// Authorization Errors
	// ===========================================

	// ErrPermissionDenied indicates the user lacks every required
	// permission tag (and, where applicable, ownership).
	ErrPermissionDenied = errors.New("insufficient permissions")

	// ErrOwnershipViolation indicates the actor does not own the target entity.
	ErrOwnershipViolation = errors.New("entity is owned by another user")

	// ErrUnknownPermission indicates a tag outside the closed permission set.
	ErrUnknownPermission = errors.New("unknown permission")

	// ===========================================
	// Entity Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates a user with the same email already exists.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrCartItemNotFound indicates the requested cart entry does not exist.
	ErrCartItemNotFound = errors.New("cart item not found")

	// ===========================================
	// Password Reset Errors
	// ===========================================

	// ErrPasswordMismatch indicates the confirmation field differs from the
	// new password.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidOrExpiredToken indicates the reset token is absent or
	// outside its validity window.
	ErrInvalidOrExpiredToken = errors.New("reset token is invalid or expired")

	// ===========================================
	// Infrastructure Errors
	// ===========================================

	// ErrUpstream indicates a store or mail dispatcher failure, propagated
	// verbatim to the caller.
	ErrUpstream = errors.New("upstream failure")
)

// WrapUpstream tags an infrastructure error so callers can distinguish it
// from business rule violations with errors.Is.
func WrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
