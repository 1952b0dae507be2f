package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wellness/portal/internal/platform/apperr"
)

type JWTConfig struct {
	SigningKey []byte
	// Revocations is consulted after signature validation. Nil disables the
	// check.
	Revocations RevocationStore
	Skipper     func(c echo.Context) bool
}

// JWTMiddleware authenticates bearer tokens and attaches the caller identity
// to the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return apperr.Unauthenticated(apperr.CodeMissingCredential, "No token, authorization denied")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return apperr.Unauthenticated(apperr.CodeInvalidCredential, "Token is not valid")
			}

			claims, err := parseToken(cfg.SigningKey, strings.TrimSpace(parts[1]))
			if err != nil {
				return apperr.Unauthenticated(apperr.CodeInvalidCredential, "Token is not valid")
			}

			ctx := c.Request().Context()
			if cfg.Revocations != nil && claims.ID != "" {
				revoked, err := cfg.Revocations.IsRevoked(ctx, claims.ID)
				if err != nil {
					return apperr.Wrap(err, "check token revocation")
				}
				if revoked {
					return apperr.Unauthenticated(apperr.CodeRevokedCredential, "Token has been revoked")
				}
			}

			ctx = WithIdentity(ctx, Identity{ID: claims.Subject, Role: claims.Role})
			ctx = context.WithValue(ctx, TokenIDKey, claims.ID)
			if claims.ExpiresAt != nil {
				ctx = context.WithValue(ctx, TokenExpiryKey, claims.ExpiresAt.Time)
			}
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", claims.Subject)

			return next(c)
		}
	}
}
