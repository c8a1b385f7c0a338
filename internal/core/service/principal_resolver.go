package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/smbsuite/platform/internal/core/domain"
	"github.com/smbsuite/platform/internal/core/ports"
	"github.com/smbsuite/platform/internal/token"
)

// Resolver validates a bearer token and reconstructs the authenticated
// principal. Every protected endpoint depends on it; nothing downstream
// of the router may trust a request that has not passed through here.
type Resolver struct {
	users     ports.UserRepository
	companies ports.CompanyRepository
	codec     *token.Codec
	audit     ports.AuditSink
	logger    zerolog.Logger
}

func NewResolver(
	users ports.UserRepository,
	companies ports.CompanyRepository,
	codec *token.Codec,
	audit ports.AuditSink,
	logger zerolog.Logger,
) *Resolver {
	return &Resolver{users: users, companies: companies, codec: codec, audit: audit, logger: logger}
}

// Resolve performs the full validation chain, in order:
//
//  1. signature + expiry (before any repository I/O, so forged tokens
//     cost no database round trips)
//  2. subject present, kind == access
//  3. user lookup
//  4. tenant binding: a token minted before an administrative company
//     transfer must not survive the transfer
//  5. company exists and is active
//  6. user is active
func (r *Resolver) Resolve(ctx context.Context, bearerToken string) (*domain.Principal, error) {
	claims, err := r.codec.Decode(bearerToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if claims.Kind != token.KindAccess || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	user, err := r.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	if claims.CompanyID != "" && claims.CompanyID != user.CompanyID {
		r.recordRebind(ctx, user, claims.CompanyID)
		return nil, domain.ErrCompanyChanged
	}

	company, err := r.companies.FindByID(ctx, user.CompanyID)
	if err != nil {
		return nil, domain.ErrCompanyNotFound
	}
	if company.Status != domain.CompanyActive {
		return nil, domain.ErrCompanyInactive
	}

	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	return &domain.Principal{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
	}, nil
}

func (r *Resolver) recordRebind(ctx context.Context, user *domain.User, tokenCompanyID string) {
	r.logger.Warn().
		Str("user_id", user.ID).
		Str("token_company_id", tokenCompanyID).
		Str("user_company_id", user.CompanyID).
		Msg("token company binding mismatch")

	if r.audit == nil {
		return
	}
	event := domain.AuditEvent{
		ActorID:   user.ID,
		CompanyID: user.CompanyID,
		Action:    domain.AuditTenantRebind,
		Success:   false,
		Detail: map[string]any{
			"token_company_id": tokenCompanyID,
			"user_company_id":  user.CompanyID,
		},
		Timestamp: time.Now().UTC(),
	}
	if err := r.audit.Record(ctx, event); err != nil {
		r.logger.Error().Err(err).Msg("audit sink write failed")
	}
}

var _ ports.PrincipalResolver = (*Resolver)(nil)
