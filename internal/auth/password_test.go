package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("sekrit")
	require.NoError(t, err)
	require.NotEqual(t, "sekrit", hash)

	require.True(t, hasher.Verify("sekrit", hash))
	require.False(t, hasher.Verify("not-sekrit", hash))
	require.False(t, hasher.Verify("", hash))
}

func TestHasher_SaltedHashesDiffer(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	h1, err := hasher.Hash("same-password")
	require.NoError(t, err)
	h2, err := hasher.Hash("same-password")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
	require.True(t, hasher.Verify("same-password", h1))
	require.True(t, hasher.Verify("same-password", h2))
}

func TestNewHasher_CostOutOfRange(t *testing.T) {
	// Out-of-range costs fall back to the bcrypt default instead of
	// failing at hash time.
	for _, cost := range []int{-1, 0, 99} {
		hasher := NewHasher(cost)
		hash, err := hasher.Hash("x")
		require.NoError(t, err)
		require.True(t, hasher.Verify("x", hash))
	}
}
