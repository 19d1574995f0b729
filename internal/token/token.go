// Package token decodes bearer credentials issued by the backend.
//
// The client decodes claims for display and expiry enforcement only.
// Signature verification is the issuer's responsibility, so tokens are
// parsed unverified and the decoded claims are never trusted beyond
// gating the UI.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded token payload.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is the user identity derived from a decoded credential.
type Identity struct {
	ID       string
	Username string
	Email    string
}

var ErrMalformed = errors.New("malformed token")

// Decode parses a bearer token without verifying its signature.
// Any parse failure is reported as ErrMalformed, never a panic.
func Decode(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMalformed
	}
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims, nil
}

// Identity returns the identity carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{
		ID:       c.Subject,
		Username: c.Username,
		Email:    c.Email,
	}
}

// Expired reports whether the claims are expired at the given instant.
// A missing exp claim counts as expired.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return c.ExpiresAt.Before(now)
}

// Valid reports whether raw decodes and is unexpired at now. This is
// the only credential state that authorizes access.
func Valid(raw string, now time.Time) bool {
	claims, err := Decode(raw)
	if err != nil {
		return false
	}
	return !claims.Expired(now)
}
