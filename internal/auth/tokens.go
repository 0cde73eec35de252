package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookbuddy/go-services/internal/config"
)

// GenerateToken mints a signed HS256 token for the identity. Used in local
// mode and by tests; hosted deployments get their tokens from the OIDC
// provider instead.
func GenerateToken(secret string, id Identity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   id.Sub,
		"name":  id.Name,
		"email": id.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// NewVerifier picks the verifier the configuration calls for: a discovered
// OIDC provider when an issuer is set, the shared-secret HS256 verifier
// when only a secret is, and the unsigned-token verifier under explicit
// local opt-in.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (Verifier, error) {
	switch {
	case cfg.Issuer != "":
		return NewOIDCVerifier(ctx, cfg.Issuer, cfg.ClientID)
	case cfg.JWTSecret != "":
		return NewHMACVerifier(cfg.JWTSecret), nil
	case cfg.InsecureLocal:
		return NewInsecureVerifier(), nil
	}
	return nil, fmt.Errorf("no verifier configured: set AUTH_ISSUER, JWT_SECRET or AUTH_INSECURE_LOCAL")
}
