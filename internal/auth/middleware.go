package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// TokenCookieName is the cookie the transport layer uses to carry the
// bearer token between requests.
const TokenCookieName = "token"

// Middleware resolves the bearer token on each inbound request into a
// Session on the request context. Requests without a token proceed with an
// anonymous session; requests presenting a token that fails verification
// are rejected before reaching any handler.
func Middleware(tokens *TokenManager, loader UserLoader, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractToken(r)
			if raw == "" {
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), Anonymous())))
				return
			}

			userID, err := tokens.Parse(raw)
			if err != nil {
				logger.Debug().Err(err).Msg("rejected request with invalid bearer token")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid bearer token"})
				return
			}

			session := NewSession(userID, loader)
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// extractToken pulls the bearer token from the session cookie or, failing
// that, the Authorization header.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(TokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
