package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/smbsuite/platform/internal/core/domain"
)

// Context keys are namespaced to avoid colliding with other middleware.
const (
	principalContextKey = "smbsuite.principal"
	advisoryContextKey  = "smbsuite.advisory"
)

// Advisory is the unvalidated tenant context peeked from the bearer token
// by the tenant middleware. It exists for observability and the header
// cross-check only; it must never be used to authorize anything.
type Advisory struct {
	CompanyID string
	UserID    string
	Role      string
}

// SetPrincipal stores the authoritative principal on the request context.
// Called exactly once per request, by the Authenticate middleware.
func SetPrincipal(c echo.Context, p *domain.Principal) {
	c.Set(principalContextKey, p)
}

// PrincipalFrom returns the authoritative principal, if the Authenticate
// middleware has run.
func PrincipalFrom(c echo.Context) (*domain.Principal, bool) {
	p, ok := c.Get(principalContextKey).(*domain.Principal)
	return p, ok && p != nil
}

func setAdvisory(c echo.Context, a Advisory) {
	c.Set(advisoryContextKey, a)
}

// AdvisoryFrom returns the advisory tenant context, if present.
func AdvisoryFrom(c echo.Context) (Advisory, bool) {
	a, ok := c.Get(advisoryContextKey).(Advisory)
	return a, ok
}
