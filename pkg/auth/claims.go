// Package auth provides JWT-based authentication for prorab-engine.
// Tokens are issued by the external auth service; this package only verifies
// them (JWKS in deployments, shared HMAC secret for local setups) and exposes
// the claims to handlers via the request context.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role values carried in tokens. Mirrors the auth service's role model.
const (
	RoleAdmin     = "admin"
	RoleInspector = "inspector"
	RoleForeman   = "foreman"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
)

// Claims represents the JWT claims structure from the auth service.
// It embeds RegisteredClaims for standard JWT fields (sub, iss, exp, etc.)
// and adds the user profile fields the ledger needs for attribution.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	FirstName string `json:"given_name,omitempty"`
	LastName  string `json:"family_name,omitempty"`
	Role      string `json:"role,omitempty"`
}

// UserID parses the token subject as a user UUID.
// Returns uuid.Nil if the subject is missing or malformed.
func (c *Claims) UserID() uuid.UUID {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// SetClaims stores JWT claims in the context. Exposed for handler tests.
func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetUserIDFromContext extracts the user ID from JWT claims in the context.
// Returns uuid.Nil if not authenticated or the subject is not a UUID.
func GetUserIDFromContext(ctx context.Context) uuid.UUID {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil
	}
	return claims.UserID()
}
