package auth

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wellness/portal/internal/platform/apperr"
)

// Role is the immutable account role fixed at registration.
type Role string

const (
	RolePatient  Role = "patient"
	RoleProvider Role = "provider"
)

var validRoles = map[Role]bool{
	RolePatient:  true,
	RoleProvider: true,
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool { return validRoles[r] }

// Identity is the verified caller attached to a request.
type Identity struct {
	ID   string
	Role Role
}

type contextKey string

const (
	UserIDKey      contextKey = "user_id"
	UserRoleKey    contextKey = "user_role"
	TokenIDKey     contextKey = "token_id"
	TokenExpiryKey contextKey = "token_expiry"
)

// WithIdentity returns a context carrying the caller identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id.ID)
	return context.WithValue(ctx, UserRoleKey, id.Role)
}

// IdentityFromContext returns the caller set by JWTMiddleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	uid, _ := ctx.Value(UserIDKey).(string)
	role, _ := ctx.Value(UserRoleKey).(Role)
	if uid == "" {
		return Identity{}, false
	}
	return Identity{ID: uid, Role: role}, true
}

// TokenFromContext returns the JTI and expiry of the bearer token used for
// the current request.
func TokenFromContext(ctx context.Context) (string, time.Time) {
	jti, _ := ctx.Value(TokenIDKey).(string)
	exp, _ := ctx.Value(TokenExpiryKey).(time.Time)
	return jti, exp
}

// Caller returns the authenticated identity of an echo request or a
// missing_credential error.
func Caller(c echo.Context) (Identity, error) {
	id, ok := IdentityFromContext(c.Request().Context())
	if !ok {
		return Identity{}, apperr.Unauthenticated(apperr.CodeMissingCredential, "No token, authorization denied")
	}
	return id, nil
}
