package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/prorab-io/prorab-engine/pkg/config"
)

// TokenVerifier validates bearer tokens and returns their claims.
// The interface exists so handler tests can substitute a stub.
type TokenVerifier interface {
	// VerifyRequest extracts and validates the bearer token on a request.
	VerifyRequest(r *http.Request) (*Claims, error)
}

// Verifier validates JWTs against the auth service's JWKS endpoint, or a
// shared HMAC secret when no JWKS URL is configured.
type Verifier struct {
	cfg     *config.AuthConfig
	keyfunc jwt.Keyfunc
}

var _ TokenVerifier = (*Verifier)(nil)

// NewVerifier creates a Verifier. When verification is enabled and a JWKS URL
// is configured, the key set is fetched eagerly so startup fails fast on a
// bad endpoint.
func NewVerifier(ctx context.Context, cfg *config.AuthConfig) (*Verifier, error) {
	v := &Verifier{cfg: cfg}

	if !cfg.EnableVerification {
		return v, nil
	}

	switch {
	case cfg.JWKSURL != "":
		jwks, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("failed to create JWKS client for %s: %w", cfg.JWKSURL, err)
		}
		v.keyfunc = jwks.Keyfunc
	case cfg.HMACSecret != "":
		secret := []byte(cfg.HMACSecret)
		v.keyfunc = func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		}
	default:
		return nil, errors.New("auth verification enabled without JWKS URL or HMAC secret")
	}

	return v, nil
}

// VerifyRequest extracts the Authorization bearer token and validates it.
func (v *Verifier) VerifyRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errors.New("missing Authorization header")
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, errors.New("Authorization header is not a bearer token")
	}

	return v.ValidateToken(tokenString)
}

// ValidateToken validates a JWT token string and returns the claims.
// If verification is disabled, the token is parsed without signature checks
// (local development only).
func (v *Verifier) ValidateToken(tokenString string) (*Claims, error) {
	if !v.cfg.EnableVerification {
		return v.parseUnverifiedToken(tokenString)
	}

	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, v.keyfunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// parseUnverifiedToken parses claims without verifying the signature.
func (v *Verifier) parseUnverifiedToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}
