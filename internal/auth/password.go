// Package auth provides credential handling for shopcore: password
// hashing, bearer-token issuance and parsing, and per-request sessions.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords using bcrypt.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost. A cost outside
// bcrypt's valid range falls back to the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted, cost-factored one-way hash of the plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext matches the stored hash. The
// comparison is delegated to bcrypt's constant-time comparator.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
