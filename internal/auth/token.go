package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prn-tf/shopcore/internal/domain"
)

// Claims is the JWT claim set carried by shopcore bearer tokens.
// Tokens carry only the user id; their lifetime is bounded by the cookie
// the transport layer sets, not by an expiry claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// TokenManager signs and verifies bearer tokens with a server secret.
type TokenManager struct {
	secret []byte
}

// NewTokenManager creates a TokenManager for the given HS256 secret.
func NewTokenManager(secret []byte) *TokenManager {
	return &TokenManager{secret: secret}
}

// Issue signs a token asserting the given user id.
func (m *TokenManager) Issue(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: userID})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token signature and structure and returns the user id.
// Any failure surfaces as domain.ErrInvalidToken.
func (m *TokenManager) Parse(tokenString string) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == 0 {
		return 0, domain.ErrInvalidToken
	}

	return claims.UserID, nil
}
