package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prn-tf/shopcore/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager([]byte("secret"))

	token, err := tm.Issue(42)
	require.NoError(t, err)

	userID, err := tm.Parse(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestTokenManager_TamperedSignature(t *testing.T) {
	tm := NewTokenManager([]byte("secret"))

	token, err := tm.Issue(42)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = tm.Parse(tampered)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager([]byte("secret-a")).Issue(42)
	require.NoError(t, err)

	_, err = NewTokenManager([]byte("secret-b")).Parse(token)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := NewTokenManager([]byte("secret"))

	for _, raw := range []string{"", "not-a-jwt", "a.b", "a.b.c"} {
		_, err := tm.Parse(raw)
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	}
}

func TestTokenManager_NoExpiryClaim(t *testing.T) {
	// Tokens deliberately carry no exp claim; the cookie bounds the
	// session lifetime instead.
	tm := NewTokenManager([]byte("secret"))

	token, err := tm.Issue(42)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var claims map[string]any
	require.NoError(t, json.Unmarshal(payload, &claims))
	require.NotContains(t, claims, "exp")
	require.Equal(t, float64(42), claims["uid"])
}

func TestTokenManager_ZeroUserID(t *testing.T) {
	tm := NewTokenManager([]byte("secret"))

	token, err := tm.Issue(0)
	require.NoError(t, err)

	_, err = tm.Parse(token)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}
