package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths bypass authentication: liveness probes and the credential
// endpoints that issue tokens.
var publicPaths = map[string]bool{
	"/":                  true,
	"/health":            true,
	"/health/db":         true,
	"/api/auth/register": true,
	"/api/auth/login":    true,
}

// AuthSkipper reports whether the matched route is public. Pass it as
// JWTConfig.Skipper.
func AuthSkipper(c echo.Context) bool {
	return IsPublicPath(c.Path())
}

func IsPublicPath(path string) bool {
	return publicPaths[path]
}
