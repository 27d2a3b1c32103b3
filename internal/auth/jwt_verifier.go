package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"chaincatalog/internal/domain"
)

// JWKSVerifier implements JWTVerifier with keys fetched from a JWKS endpoint.
type JWKSVerifier struct {
	keyfunc      jwt.Keyfunc
	requiredRole string
	logger       *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from jwksURL.
// keyfunc v3 caches the keys and refreshes them based on HTTP cache headers.
// An empty requiredRole accepts any role.
func NewJWTVerifier(jwksURL, requiredRole string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)
	return newVerifier(jwks.Keyfunc, requiredRole, logger), nil
}

func newVerifier(kf jwt.Keyfunc, requiredRole string, logger *slog.Logger) *JWKSVerifier {
	return &JWKSVerifier{keyfunc: kf, requiredRole: requiredRole, logger: logger}
}

// VerifyToken validates a JWT token and extracts its claims.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*Claims, error) {
	// only asymmetric algorithms, to prevent algorithm confusion
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, v.keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}))
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}
	if !token.Valid {
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, &domain.UnauthorizedError{Message: "token missing subject"}
	}

	if v.requiredRole != "" && claims.Role != v.requiredRole {
		v.logger.Warn("token has unexpected role",
			"role", claims.Role,
			"expected", v.requiredRole,
			"user_id", claims.Subject)
		return nil, &domain.UnauthorizedError{Message: "insufficient role"}
	}

	return claims, nil
}

// Close is a no-op; keyfunc v3 manages its own refresh goroutine lifetime.
func (v *JWKSVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
