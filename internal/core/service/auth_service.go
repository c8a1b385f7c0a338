package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog"

	"github.com/smbsuite/platform/internal/core/domain"
	"github.com/smbsuite/platform/internal/core/ports"
	"github.com/smbsuite/platform/internal/token"
)

// TokenTTLs bundles the independent lifetimes of the three token kinds.
type TokenTTLs struct {
	Access  time.Duration
	Refresh time.Duration
	Reset   time.Duration
}

const maxResetTTL = time.Hour

// AuthService implements registration, login, token refresh, and the
// password-reset flow.
type AuthService struct {
	users     ports.UserRepository
	companies ports.CompanyRepository
	codec     *token.Codec
	audit     ports.AuditSink
	mailer    ports.Mailer
	limiter   ports.LoginLimiter
	ttls      TokenTTLs
	logger    zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	companies ports.CompanyRepository,
	codec *token.Codec,
	audit ports.AuditSink,
	mailer ports.Mailer,
	limiter ports.LoginLimiter,
	ttls TokenTTLs,
	logger zerolog.Logger,
) *AuthService {
	if ttls.Access <= 0 {
		ttls.Access = 15 * time.Minute
	}
	if ttls.Refresh <= 0 {
		ttls.Refresh = 7 * 24 * time.Hour
	}
	// Reset tokens are capped at one hour regardless of configuration.
	if ttls.Reset <= 0 || ttls.Reset > maxResetTTL {
		ttls.Reset = maxResetTTL
	}
	return &AuthService{
		users:     users,
		companies: companies,
		codec:     codec,
		audit:     audit,
		mailer:    mailer,
		limiter:   limiter,
		ttls:      ttls,
		logger:    logger,
	}
}

// RegisterCompany creates a new tenant and its first administrative user.
// Both are created or neither is: a user-creation failure rolls the
// company back.
func (s *AuthService) RegisterCompany(ctx context.Context, input ports.RegisterCompanyInput) (*ports.AuthResult, error) {
	if input.CompanyName == "" || input.CompanyEmail == "" || input.AdminEmail == "" || input.AdminPassword == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.companies.FindByEmail(ctx, input.CompanyEmail); err == nil {
		return nil, domain.ErrCompanyExists
	}
	if _, err := s.users.FindByEmail(ctx, input.AdminEmail); err == nil {
		return nil, domain.ErrUserExists
	}

	hash, err := HashPassword(input.AdminPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	company, err := s.companies.Create(ctx, &domain.Company{
		ID:        newID(),
		Name:      input.CompanyName,
		Email:     input.CompanyEmail,
		Phone:     input.Phone,
		Address:   input.Address,
		TaxID:     input.TaxID,
		Status:    domain.CompanyActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &domain.User{
		ID:           newID(),
		CompanyID:    company.ID,
		Email:        input.AdminEmail,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         domain.RoleCompanyAdmin,
		IsActive:     true,
		LastLoginAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Roll the company back so no orphan tenant survives a duplicate
		// admin email.
		if delErr := s.companies.Delete(ctx, company.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("company_id", company.ID).Msg("rollback of orphan company failed")
		}
		return nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.record(ctx, domain.AuditEvent{
		ActorID:   user.ID,
		CompanyID: company.ID,
		Action:    domain.AuditRegister,
		Success:   true,
		Timestamp: now,
	})

	return &ports.AuthResult{User: user, Company: company, Tokens: pair}, nil
}

// Login verifies credentials and issues a token pair. Unknown email and
// wrong password return the same error so the endpoint cannot be used to
// enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email, clientIP)
		if err != nil {
			// A broken limiter must not lock everyone out.
			s.logger.Error().Err(err).Msg("login limiter unavailable")
		} else if !allowed {
			s.record(ctx, domain.AuditEvent{
				Action:    domain.AuditLoginFailure,
				Success:   false,
				Detail:    map[string]any{"reason": "rate_limited"},
				IP:        clientIP,
				Timestamp: time.Now().UTC(),
			})
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.auditLoginFailure(ctx, "", "", "unknown_email", clientIP)
		return nil, domain.ErrInvalidCredentials
	}

	if !VerifyPassword(password, user.PasswordHash) {
		s.auditLoginFailure(ctx, user.ID, user.CompanyID, "wrong_password", clientIP)
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.auditLoginFailure(ctx, user.ID, user.CompanyID, "account_inactive", clientIP)
		return nil, domain.ErrAccountInactive
	}

	company, err := s.companies.FindByID(ctx, user.CompanyID)
	if err != nil {
		return nil, domain.ErrCompanyNotFound
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("last_login update failed")
	}
	user.LastLoginAt = &now

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.record(ctx, domain.AuditEvent{
		ActorID:   user.ID,
		CompanyID: user.CompanyID,
		Action:    domain.AuditLoginSuccess,
		Success:   true,
		IP:        clientIP,
		Timestamp: now,
	})

	return &ports.AuthResult{User: user, Company: company, Tokens: pair}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The old
// refresh token is not revoked; it simply ages out.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (ports.TokenPair, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return ports.TokenPair{}, domain.ErrInvalidToken
	}
	if claims.Kind != token.KindRefresh || claims.Subject == "" {
		return ports.TokenPair{}, domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil || !user.IsActive {
		return ports.TokenPair{}, domain.ErrInvalidToken
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return ports.TokenPair{}, err
	}

	s.record(ctx, domain.AuditEvent{
		ActorID:   user.ID,
		CompanyID: user.CompanyID,
		Action:    domain.AuditTokenRefresh,
		Success:   true,
		Timestamp: time.Now().UTC(),
	})

	return pair, nil
}

// RequestPasswordReset always reports success so the endpoint cannot be
// used to probe for registered emails. When the account exists, a
// short-lived reset token is handed to the mailer.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil
	}

	reset, err := s.codec.Issue(user.ID, user.CompanyID, string(user.Role), token.KindPasswordReset, s.ttls.Reset)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("reset token issue failed")
		return nil
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, reset); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("reset email dispatch failed")
	}

	s.record(ctx, domain.AuditEvent{
		ActorID:   user.ID,
		CompanyID: user.CompanyID,
		Action:    domain.AuditPasswordReset,
		Success:   true,
		Detail:    map[string]any{"stage": "requested"},
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// ResetPassword overwrites the password hash after validating a
// password_reset-kind token.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if newPassword == "" {
		return domain.ErrInvalidCredentials
	}

	claims, err := s.codec.Decode(resetToken)
	if err != nil {
		return domain.ErrInvalidToken
	}
	if claims.Kind != token.KindPasswordReset || claims.Subject == "" {
		return domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return domain.ErrInvalidToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.record(ctx, domain.AuditEvent{
		ActorID:   user.ID,
		CompanyID: user.CompanyID,
		Action:    domain.AuditPasswordReset,
		Success:   true,
		Detail:    map[string]any{"stage": "completed"},
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *AuthService) issuePair(user *domain.User) (ports.TokenPair, error) {
	access, err := s.codec.Issue(user.ID, user.CompanyID, string(user.Role), token.KindAccess, s.ttls.Access)
	if err != nil {
		return ports.TokenPair{}, err
	}
	refresh, err := s.codec.Issue(user.ID, user.CompanyID, string(user.Role), token.KindRefresh, s.ttls.Refresh)
	if err != nil {
		return ports.TokenPair{}, err
	}
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) auditLoginFailure(ctx context.Context, actorID, companyID, reason, clientIP string) {
	s.record(ctx, domain.AuditEvent{
		ActorID:   actorID,
		CompanyID: companyID,
		Action:    domain.AuditLoginFailure,
		Success:   false,
		Detail:    map[string]any{"reason": reason},
		IP:        clientIP,
		Timestamp: time.Now().UTC(),
	})
}

// record hands an event to the audit sink. Sink failures are logged and
// swallowed; they must never fail the originating request.
func (s *AuthService) record(ctx context.Context, event domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("action", event.Action).Msg("audit sink write failed")
	}
}

var _ ports.AuthService = (*AuthService)(nil)

// newID returns a 32-char hex identifier.
func newID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().UTC().Format("20060102150405.000000000")))[:32]
	}
	return hex.EncodeToString(b)
}
