package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/smbsuite/platform/internal/api/metrics"
	"github.com/smbsuite/platform/internal/core/domain"
	"github.com/smbsuite/platform/internal/core/ports"
	"github.com/smbsuite/platform/internal/token"
)

// HeaderCompanyID is the optional client-supplied tenant hint. When
// present it must agree with the company id embedded in the bearer token.
const HeaderCompanyID = "X-Company-ID"

// publicPaths are served without any tenant context.
var publicPaths = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/refresh",
	"/api/auth/forgot-password",
	"/api/auth/reset-password",
	"/health",
	"/metrics",
	"/docs",
}

// TenantContext runs before authentication on every request. It peeks at
// the bearer token WITHOUT expiry validation to extract the advisory
// company/user/role triple, and rejects outright when a client-supplied
// X-Company-ID header disagrees with the token's own company claim.
//
// This middleware is advisory and defensive, never authoritative: decode
// failures are swallowed, and a matching header grants nothing. Full
// validation happens downstream in the Authenticate middleware.
func TenantContext(codec *token.Codec, audit ports.AuditSink, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isPublicPath(c.Request().URL.Path) {
				return next(c)
			}

			bearer := bearerToken(c.Request().Header.Get("Authorization"))
			if bearer == "" {
				return next(c)
			}

			claims, err := codec.Peek(bearer)
			if err != nil || claims.CompanyID == "" {
				// Not an error here: the authoritative check downstream
				// will reject the request with the proper status.
				return next(c)
			}

			if header := c.Request().Header.Get(HeaderCompanyID); header != "" && header != claims.CompanyID {
				metrics.TenantMismatchesTotal.Inc()
				recordMismatch(c, audit, logger, claims, header)
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrTenantMismatch.Error())
			}

			setAdvisory(c, Advisory{
				CompanyID: claims.CompanyID,
				UserID:    claims.Subject,
				Role:      claims.Role,
			})
			return next(c)
		}
	}
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// auditDispatchTimeout bounds the detached audit write so a stuck sink
// cannot pile up goroutines forever.
const auditDispatchTimeout = 5 * time.Second

// recordMismatch audits a header/token tenant disagreement. The sink
// write is dispatched off the request path: the 403 must not wait on the
// audit store, and a failed write only costs the trail entry, never the
// rejection. The event is fully built before the goroutine starts so it
// never touches the request after the response is sent.
func recordMismatch(c echo.Context, audit ports.AuditSink, logger zerolog.Logger, claims *token.Claims, header string) {
	logger.Warn().
		Str("token_company_id", claims.CompanyID).
		Str("header_company_id", header).
		Str("user_id", claims.Subject).
		Str("path", c.Request().URL.Path).
		Msg("company header disagrees with token")

	if audit == nil {
		return
	}
	event := domain.AuditEvent{
		ActorID:   claims.Subject,
		CompanyID: claims.CompanyID,
		Action:    domain.AuditTenantMismatch,
		Success:   false,
		Detail: map[string]any{
			"token_company_id":  claims.CompanyID,
			"header_company_id": header,
			"path":              c.Request().URL.Path,
			"method":            c.Request().Method,
		},
		IP:        c.RealIP(),
		Timestamp: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditDispatchTimeout)
		defer cancel()
		if err := audit.Record(ctx, event); err != nil {
			logger.Error().Err(err).Msg("audit sink write failed")
		}
	}()
}
