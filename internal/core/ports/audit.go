package ports

import (
	"context"

	"github.com/smbsuite/platform/internal/core/domain"
)

// AuditSink records security-relevant events. Callers treat it as
// fire-and-forget: a sink failure is logged locally and never fails the
// originating request.
type AuditSink interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}

// Mailer delivers password-reset tokens out of band. The auth core never
// returns the token to the API caller.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetToken string) error
}

// LoginLimiter throttles credential-verification attempts per email and
// client address, guarding against online brute force.
type LoginLimiter interface {
	Allow(ctx context.Context, email, clientIP string) (bool, error)
}
