package auth

import "context"

type contextKey struct{}

var sessionKey contextKey

// WithSession returns a context carrying the given session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session attached to the context, or an
// anonymous session when the transport attached none.
func SessionFromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey).(*Session); ok {
		return s
	}
	return Anonymous()
}
