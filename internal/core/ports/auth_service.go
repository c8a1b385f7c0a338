package ports

import (
	"context"

	"github.com/smbsuite/platform/internal/core/domain"
)

// RegisterCompanyInput carries the fields needed to create a new tenant
// together with its first administrative user.
type RegisterCompanyInput struct {
	CompanyName   string
	CompanyEmail  string
	Phone         string
	Address       string
	TaxID         string
	AdminEmail    string
	AdminPassword string
	FirstName     string
	LastName      string
}

// TokenPair is an access/refresh token couple issued together.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResult is returned by operations that establish a session.
type AuthResult struct {
	User    *domain.User    `json:"user"`
	Company *domain.Company `json:"company"`
	Tokens  TokenPair       `json:"tokens"`
}

// AuthService orchestrates credential verification and token issuance.
type AuthService interface {
	RegisterCompany(ctx context.Context, input RegisterCompanyInput) (*AuthResult, error)
	Login(ctx context.Context, email, password, clientIP string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

// PrincipalResolver reconstructs and validates the authenticated principal
// for the current request from a bearer token. This is the single entry
// point protected endpoints depend on.
type PrincipalResolver interface {
	Resolve(ctx context.Context, bearerToken string) (*domain.Principal, error)
}
