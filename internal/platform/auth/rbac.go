package auth

import (
	"github.com/labstack/echo/v4"
)

// Require returns middleware that enforces the role gate of action. Ownership
// rules are checked later by the services once the resource is loaded.
func Require(p *Policy, action Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, err := Caller(c)
			if err != nil {
				return err
			}
			if err := p.AuthorizeRole(caller, action).Err(); err != nil {
				return err
			}
			return next(c)
		}
	}
}
