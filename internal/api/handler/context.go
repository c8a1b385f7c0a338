package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smbsuite/platform/internal/api/middleware"
	"github.com/smbsuite/platform/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Authenticate
// middleware and fast-fails before any service call:
//   - presence proves the middleware ran on this route.
//   - a principal without a company id is structurally impossible for a
//     validated token; treat it as a broken pipeline, not a user error.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	if principal.CompanyID == "" {
		return nil, echo.NewHTTPError(http.StatusForbidden, "user has no company association")
	}
	return principal, nil
}
