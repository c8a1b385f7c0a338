package domain

import "time"

// Audit action kinds emitted by the auth core.
const (
	AuditLoginSuccess     = "login_success"
	AuditLoginFailure     = "login_failure"
	AuditRegister         = "register"
	AuditTokenRefresh     = "token_refresh"
	AuditTenantMismatch   = "tenant_mismatch"
	AuditTenantRebind     = "tenant_rebind_rejected"
	AuditPasswordReset    = "password_reset"
	AuditCrossTenantFetch = "cross_tenant_fetch"
)

// AuditEvent is a security-relevant occurrence handed to the audit sink.
// ActorID and CompanyID are empty when the actor could not be identified
// (e.g. a failed login for an unknown email).
type AuditEvent struct {
	ActorID      string         `json:"actor_id,omitempty"`
	CompanyID    string         `json:"company_id,omitempty"`
	Action       string         `json:"action"`
	ResourceKind string         `json:"resource_kind,omitempty"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Success      bool           `json:"success"`
	Detail       map[string]any `json:"detail,omitempty"`
	IP           string         `json:"ip,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}
