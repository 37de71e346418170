package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// UserSync mirrors authenticated identities into local storage so reads can
// join on user rows. Implementations must be best-effort and never block
// request handling on failure.
type UserSync interface {
	Sync(ctx context.Context, claims *Claims)
}

// Middleware provides HTTP authentication middleware.
// It is thin and delegates token validation to the TokenVerifier.
type Middleware struct {
	verifier TokenVerifier
	userSync UserSync
	logger   *zap.Logger
}

// NewMiddleware creates a new auth middleware with the given verifier.
// userSync may be nil.
func NewMiddleware(verifier TokenVerifier, userSync UserSync, logger *zap.Logger) *Middleware {
	return &Middleware{
		verifier: verifier,
		userSync: userSync,
		logger:   logger,
	}
}

// RequireAuth validates the bearer token and stores claims in the context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.verifier.VerifyRequest(r)
		if err != nil {
			m.logger.Debug("Rejected unauthenticated request",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			m.unauthorized(w, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		if m.userSync != nil {
			m.userSync.Sync(ctx, claims)
		}
		next(w, r.WithContext(ctx))
	}
}

// RequireRole validates the bearer token and additionally requires one of the
// given roles. Admins pass every role check.
func (m *Middleware) RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	allowed := make(map[string]bool, len(roles)+1)
	allowed[RoleAdmin] = true
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := GetClaims(r.Context())
			if claims == nil || !allowed[claims.Role] {
				m.forbidden(w, "Insufficient role for this operation")
				return
			}
			next(w, r)
		})
	}
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	m.writeError(w, http.StatusUnauthorized, "unauthorized", message)
}

func (m *Middleware) forbidden(w http.ResponseWriter, message string) {
	m.writeError(w, http.StatusForbidden, "forbidden", message)
}

func (m *Middleware) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	}); err != nil {
		m.logger.Error("Failed to write auth error response", zap.Error(err))
	}
}
