package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smbsuite/platform/internal/core/domain"
)

// RequireRole gates a route on the role hierarchy: any principal whose
// role is min or higher passes. Must run after Authenticate. The response
// never reveals which role would have sufficed.
func RequireRole(min domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if !principal.Role.AtLeast(min) {
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
			}
			return next(c)
		}
	}
}

// Canonical gates.
func RequireEmployee() echo.MiddlewareFunc { return RequireRole(domain.RoleEmployee) }
func RequireManager() echo.MiddlewareFunc  { return RequireRole(domain.RoleManager) }
func RequireAdmin() echo.MiddlewareFunc    { return RequireRole(domain.RoleCompanyAdmin) }
