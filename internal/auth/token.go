package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 12

// TokenChecker verifies presented admin tokens against a hash computed once
// at startup, so the clear token never sits in memory longer than Load.
type TokenChecker struct {
	hash string
}

// NewTokenChecker hashes the configured admin token.
func NewTokenChecker(token string) (*TokenChecker, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, fmt.Errorf("admin token is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(trimmed), DefaultBcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin token: %w", err)
	}
	return &TokenChecker{hash: string(hash)}, nil
}

// Verify reports whether the presented token matches the configured one.
func (c *TokenChecker) Verify(presented string) bool {
	if c == nil || c.hash == "" {
		return false
	}
	trimmed := strings.TrimSpace(presented)
	if trimmed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.hash), []byte(trimmed)) == nil
}
