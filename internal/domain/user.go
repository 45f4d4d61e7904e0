// Package domain contains the core business entities for shopcore.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the storefront mutation layer.
package domain

import (
	"strings"
	"time"
)

// User represents a registered storefront user.
// Users own items and cart entries and carry a set of permission tags.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Name is the display name chosen at signup.
	Name string `json:"name"`

	// Email is the unique email address, normalized to lowercase at write time.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// Permissions is the ordered set of permission tags granted to the user.
	// New users start with {PermissionUser}.
	Permissions []Permission `json:"permissions"`

	// ResetToken is the pending password-reset token, if one has been issued.
	// Invariant: ResetToken and ResetTokenExpiry are both set or both nil.
	ResetToken *string `json:"-"`

	// ResetTokenExpiry is the expiry timestamp of the pending reset token.
	ResetTokenExpiry *time.Time `json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with the default permission set.
func NewUser(name, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Name:         name,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Permissions:  []Permission{PermissionUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail lowercases and trims an email address. All email
// comparisons in the system go through normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasAnyPermission reports whether the user holds at least one of the
// required permission tags. Pure set intersection, no I/O.
func (u *User) HasAnyPermission(required ...Permission) bool {
	for _, need := range required {
		for _, have := range u.Permissions {
			if have == need {
				return true
			}
		}
	}
	return false
}

// ClearResetToken removes any pending reset token. Both fields move
// together to preserve the both-present-or-both-absent invariant.
func (u *User) ClearResetToken() {
	u.ResetToken = nil
	u.ResetTokenExpiry = nil
}

// SetResetToken stores a freshly issued reset token and its expiry.
func (u *User) SetResetToken(token string, expiry time.Time) {
	u.ResetToken = &token
	u.ResetTokenExpiry = &expiry
}
