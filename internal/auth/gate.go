package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// maxSecretBytes is the longest input bcrypt considers
const maxSecretBytes = 72

// ErrEmptySecret signals a gate configured without a password.
var ErrEmptySecret = errors.New("auth: dashboard password must not be empty")

// Gate decides whether a password unlocks the dashboard.
// Only a bcrypt hash of the configured password is kept in memory.
type Gate struct {
	hash []byte
}

// NewGate hashes secret and returns a gate that opens for it.
func NewGate(secret string) (*Gate, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if len(secret) > maxSecretBytes {
		return nil, fmt.Errorf("auth: dashboard password must be at most %d bytes", maxSecretBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	return &Gate{hash: hash}, nil
}

// Unlock reports whether input equals the configured password exactly.
// It never fails: any other input, including empty or oversized input,
// simply leaves the gate locked.
func (g *Gate) Unlock(input string) bool {
	if g == nil || input == "" || len(input) > maxSecretBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword(g.hash, []byte(input)) == nil
}
