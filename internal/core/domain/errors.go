package domain

import "errors"

// Authentication errors. Client-facing messages are deliberately generic;
// the specific failure reason goes to the audit sink and logs only.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrCompanyChanged     = errors.New("company context has changed, re-authenticate")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Tenant and authorization errors.
var (
	ErrCompanyNotFound = errors.New("company no longer exists")
	ErrCompanyInactive = errors.New("company account is inactive")
	ErrForbidden       = errors.New("insufficient permissions")
	ErrCrossTenant     = errors.New("resource belongs to another company")
	ErrNotTenantScoped = errors.New("resource type is not tenant scoped")
	ErrTenantMismatch  = errors.New("company context mismatch")
)

// Persistence conflicts.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user with this email already exists")
	ErrCompanyExists    = errors.New("company with this email already exists")
	ErrEmployeeNotFound = errors.New("employee not found")
)
