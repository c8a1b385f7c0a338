package handler

import (
	"github.com/smbsuite/platform/internal/core/domain"
	"github.com/smbsuite/platform/internal/core/ports"
)

type registerRequest struct {
	CompanyName   string `json:"company_name"   validate:"required"`
	CompanyEmail  string `json:"company_email"  validate:"required,email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	TaxID         string `json:"tax_id"`
	AdminEmail    string `json:"admin_email"    validate:"required,email"`
	AdminPassword string `json:"admin_password" validate:"required,min=8"`
	FirstName     string `json:"first_name"     validate:"required"`
	LastName      string `json:"last_name"      validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type authResponse struct {
	User         *domain.User    `json:"user"`
	Company      *domain.Company `json:"company"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
}

func newAuthResponse(result *ports.AuthResult) authResponse {
	return authResponse{
		User:         result.User,
		Company:      result.Company,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type messageResponse struct {
	Message string `json:"message"`
}
