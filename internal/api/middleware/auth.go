package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smbsuite/platform/internal/api/metrics"
	"github.com/smbsuite/platform/internal/core/domain"
	"github.com/smbsuite/platform/internal/core/ports"
)

// Authenticate performs the authoritative per-request validation: it hands
// the bearer token to the principal resolver and stores the resulting
// typed Principal on the request context. Handlers behind this middleware
// may rely on PrincipalFrom returning a fully validated identity.
func Authenticate(resolver ports.PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			bearer := bearerToken(header)
			if bearer == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			start := time.Now()
			principal, err := resolver.Resolve(c.Request().Context(), bearer)
			metrics.AuthResolveDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				return resolveFailure(err)
			}

			SetPrincipal(c, principal)
			return next(c)
		}
	}
}

// resolveFailure maps resolver errors onto the 401/403 taxonomy. The
// client only ever sees the sentinel message; specifics stay in the
// audit trail and logs.
func resolveFailure(err error) error {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		metrics.TokenErrorsTotal.WithLabelValues("expired").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrTokenExpired.Error())
	case errors.Is(err, domain.ErrCompanyChanged):
		metrics.TokenErrorsTotal.WithLabelValues("company_changed").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrCompanyChanged.Error())
	case errors.Is(err, domain.ErrCompanyNotFound):
		metrics.TokenErrorsTotal.WithLabelValues("company_deleted").Inc()
		return echo.NewHTTPError(http.StatusForbidden, domain.ErrCompanyNotFound.Error())
	case errors.Is(err, domain.ErrCompanyInactive):
		metrics.TokenErrorsTotal.WithLabelValues("company_inactive").Inc()
		return echo.NewHTTPError(http.StatusForbidden, domain.ErrCompanyInactive.Error())
	case errors.Is(err, domain.ErrAccountInactive):
		metrics.TokenErrorsTotal.WithLabelValues("account_inactive").Inc()
		return echo.NewHTTPError(http.StatusForbidden, domain.ErrAccountInactive.Error())
	default:
		metrics.TokenErrorsTotal.WithLabelValues("invalid_token").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
}
