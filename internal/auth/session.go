package auth

import (
	"context"

	"github.com/prn-tf/shopcore/internal/domain"
)

// UserLoader resolves a full user (including permissions) by id.
// Implemented by the repository layer, optionally fronted by a cache.
type UserLoader interface {
	LoadUser(ctx context.Context, id int64) (*domain.User, error)
}

// Session is the per-request identity resolved from a bearer token.
// It lives for exactly one request and is never persisted. The full user
// record is loaded lazily on first use and cached for the request.
type Session struct {
	userID int64
	loader UserLoader
	user   *domain.User
}

// NewSession creates an authenticated session for the given user id.
func NewSession(userID int64, loader UserLoader) *Session {
	return &Session{userID: userID, loader: loader}
}

// Anonymous returns a session with no resolved user.
func Anonymous() *Session {
	return &Session{}
}

// Authenticated reports whether the session carries a resolved user id.
func (s *Session) Authenticated() bool {
	return s != nil && s.userID != 0
}

// UserID returns the resolved user id, or 0 for anonymous sessions.
func (s *Session) UserID() int64 {
	if s == nil {
		return 0
	}
	return s.userID
}

// User resolves the full user record, loading it at most once per request.
func (s *Session) User(ctx context.Context) (*domain.User, error) {
	if !s.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if s.user != nil {
		return s.user, nil
	}

	user, err := s.loader.LoadUser(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	s.user = user
	return user, nil
}
