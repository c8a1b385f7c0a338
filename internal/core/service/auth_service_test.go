package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/smbsuite/platform/internal/core/domain"
	"github.com/smbsuite/platform/internal/core/ports"
	"github.com/smbsuite/platform/internal/token"
)

type stubUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	r.byID[copy.ID] = cloneUser(copy)
	r.byEmail[copy.Email] = r.byID[copy.ID]
	return copy, nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

type stubCompanyRepo struct {
	byID    map[string]*domain.Company
	byEmail map[string]*domain.Company
}

func newStubCompanyRepo() *stubCompanyRepo {
	return &stubCompanyRepo{byID: map[string]*domain.Company{}, byEmail: map[string]*domain.Company{}}
}

func (r *stubCompanyRepo) FindByID(_ context.Context, id string) (*domain.Company, error) {
	if c, ok := r.byID[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, domain.ErrCompanyNotFound
}

func (r *stubCompanyRepo) FindByEmail(_ context.Context, email string) (*domain.Company, error) {
	if c, ok := r.byEmail[email]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, domain.ErrCompanyNotFound
}

func (r *stubCompanyRepo) Create(_ context.Context, company *domain.Company) (*domain.Company, error) {
	if _, exists := r.byEmail[company.Email]; exists {
		return nil, domain.ErrCompanyExists
	}
	clone := *company
	r.byID[clone.ID] = &clone
	r.byEmail[clone.Email] = &clone
	return &clone, nil
}

func (r *stubCompanyRepo) Delete(_ context.Context, id string) error {
	c, ok := r.byID[id]
	if !ok {
		return domain.ErrCompanyNotFound
	}
	delete(r.byEmail, c.Email)
	delete(r.byID, id)
	return nil
}

type stubAudit struct {
	events []domain.AuditEvent
	err    error
}

func (s *stubAudit) Record(_ context.Context, event domain.AuditEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubMailer struct {
	sentTo    []string
	lastToken string
}

func (m *stubMailer) SendPasswordReset(_ context.Context, email, resetToken string) error {
	m.sentTo = append(m.sentTo, email)
	m.lastToken = resetToken
	return nil
}

type stubLimiter struct {
	allow bool
	err   error
}

func (l *stubLimiter) Allow(_ context.Context, _, _ string) (bool, error) {
	return l.allow, l.err
}

type authFixture struct {
	svc       *AuthService
	users     *stubUserRepo
	companies *stubCompanyRepo
	audit     *stubAudit
	mailer    *stubMailer
	limiter   *stubLimiter
	codec     *token.Codec
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:     newStubUserRepo(),
		companies: newStubCompanyRepo(),
		audit:     &stubAudit{},
		mailer:    &stubMailer{},
		limiter:   &stubLimiter{allow: true},
		codec:     token.NewCodec("secret", "smbsuite"),
	}
	f.svc = NewAuthService(f.users, f.companies, f.codec, f.audit, f.mailer, f.limiter, TokenTTLs{
		Access:  15 * time.Minute,
		Refresh: 7 * 24 * time.Hour,
		Reset:   time.Hour,
	}, zerolog.Nop())
	return f
}

func register(t *testing.T, f *authFixture) *ports.AuthResult {
	t.Helper()
	result, err := f.svc.RegisterCompany(context.Background(), ports.RegisterCompanyInput{
		CompanyName:   "Acme Bakery",
		CompanyEmail:  "hello@acme.test",
		AdminEmail:    "owner@acme.test",
		AdminPassword: "s3cret-pass",
		FirstName:     "Ada",
		LastName:      "Owner",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return result
}

func TestRegisterCompany_CreatesAdminAndIssuesTokens(t *testing.T) {
	f := newAuthFixture()
	result := register(t, f)

	if result.User.Role != domain.RoleCompanyAdmin {
		t.Fatalf("role = %s, want company_admin", result.User.Role)
	}
	if result.User.CompanyID != result.Company.ID {
		t.Fatalf("admin not bound to created company")
	}
	if result.User.PasswordHash == "s3cret-pass" {
		t.Fatalf("password stored in plaintext")
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", result.Tokens)
	}

	claims, err := f.codec.Decode(result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("decode access token: %v", err)
	}
	if claims.CompanyID != result.Company.ID {
		t.Fatalf("token company = %q, want %q", claims.CompanyID, result.Company.ID)
	}
}

func TestRegisterCompany_DuplicateCompanyEmail(t *testing.T) {
	f := newAuthFixture()
	register(t, f)

	_, err := f.svc.RegisterCompany(context.Background(), ports.RegisterCompanyInput{
		CompanyName:   "Acme Clone",
		CompanyEmail:  "hello@acme.test",
		AdminEmail:    "other@acme.test",
		AdminPassword: "pass-word",
	})
	if !errors.Is(err, domain.ErrCompanyExists) {
		t.Fatalf("expected ErrCompanyExists, got %v", err)
	}
}

func TestRegisterCompany_DuplicateAdminEmailRollsBackCompany(t *testing.T) {
	f := newAuthFixture()
	register(t, f)

	_, err := f.svc.RegisterCompany(context.Background(), ports.RegisterCompanyInput{
		CompanyName:   "Other Co",
		CompanyEmail:  "hello@other.test",
		AdminEmail:    "owner@acme.test", // already taken
		AdminPassword: "pass-word",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if _, err := f.companies.FindByEmail(context.Background(), "hello@other.test"); err == nil {
		t.Fatalf("orphan company survived failed registration")
	}
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture()
	register(t, f)

	result, err := f.svc.Login(context.Background(), "owner@acme.test", "s3cret-pass", "203.0.113.7")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("expected token pair")
	}
	if result.User.LastLoginAt == nil {
		t.Fatalf("last_login not updated")
	}

	stored, _ := f.users.FindByEmail(context.Background(), "owner@acme.test")
	if stored.LastLoginAt == nil {
		t.Fatalf("last_login not persisted")
	}
}

func TestLogin_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	f := newAuthFixture()
	register(t, f)

	_, errUnknown := f.svc.Login(context.Background(), "ghost@acme.test", "whatever", "")
	_, errWrong := f.svc.Login(context.Background(), "owner@acme.test", "wrong-pass", "")

	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errUnknown)
	}
	if !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("error messages differ: %q vs %q", errUnknown, errWrong)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	f := newAuthFixture()
	result := register(t, f)

	f.users.byID[result.User.ID].IsActive = false

	if _, err := f.svc.Login(context.Background(), "owner@acme.test", "s3cret-pass", ""); !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	f := newAuthFixture()
	register(t, f)
	f.limiter.allow = false

	if _, err := f.svc.Login(context.Background(), "owner@acme.test", "s3cret-pass", "198.51.100.9"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestLogin_LimiterFailureDoesNotBlock(t *testing.T) {
	f := newAuthFixture()
	register(t, f)
	f.limiter.err = errors.New("redis down")

	if _, err := f.svc.Login(context.Background(), "owner@acme.test", "s3cret-pass", ""); err != nil {
		t.Fatalf("login should succeed when limiter is unavailable, got %v", err)
	}
}

func TestLogin_AuditSinkFailureDoesNotFailLogin(t *testing.T) {
	f := newAuthFixture()
	register(t, f)
	f.audit.err = errors.New("sink down")

	if _, err := f.svc.Login(context.Background(), "owner@acme.test", "s3cret-pass", ""); err != nil {
		t.Fatalf("login failed because of audit sink: %v", err)
	}
}

func TestRefresh_IssuesFreshPair(t *testing.T) {
	f := newAuthFixture()
	result := register(t, f)

	pair, err := f.svc.Refresh(context.Background(), result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	claims, err := f.codec.Decode(pair.AccessToken)
	if err != nil {
		t.Fatalf("decode new access token: %v", err)
	}
	if claims.Kind != token.KindAccess {
		t.Fatalf("kind = %q, want access", claims.Kind)
	}
	if claims.Subject != result.User.ID {
		t.Fatalf("subject = %q, want %q", claims.Subject, result.User.ID)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture()
	result := register(t, f)

	if _, err := f.svc.Refresh(context.Background(), result.Tokens.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for access-kind token, got %v", err)
	}
}

func TestRefresh_RejectsDeactivatedUser(t *testing.T) {
	f := newAuthFixture()
	result := register(t, f)

	f.users.byID[result.User.ID].IsActive = false

	if _, err := f.svc.Refresh(context.Background(), result.Tokens.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRequestPasswordReset_AlwaysSucceeds(t *testing.T) {
	f := newAuthFixture()
	register(t, f)

	if err := f.svc.RequestPasswordReset(context.Background(), "ghost@acme.test"); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if len(f.mailer.sentTo) != 0 {
		t.Fatalf("mail sent for unknown email")
	}

	if err := f.svc.RequestPasswordReset(context.Background(), "owner@acme.test"); err != nil {
		t.Fatalf("known email: %v", err)
	}
	if len(f.mailer.sentTo) != 1 || f.mailer.sentTo[0] != "owner@acme.test" {
		t.Fatalf("reset mail not dispatched: %v", f.mailer.sentTo)
	}

	claims, err := f.codec.Decode(f.mailer.lastToken)
	if err != nil {
		t.Fatalf("decode reset token: %v", err)
	}
	if claims.Kind != token.KindPasswordReset {
		t.Fatalf("kind = %q, want password_reset", claims.Kind)
	}
}

func TestResetPassword_OverwritesHash(t *testing.T) {
	f := newAuthFixture()
	register(t, f)
	_ = f.svc.RequestPasswordReset(context.Background(), "owner@acme.test")

	if err := f.svc.ResetPassword(context.Background(), f.mailer.lastToken, "brand-new-pass"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := f.svc.Login(context.Background(), "owner@acme.test", "s3cret-pass", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted")
	}
	if _, err := f.svc.Login(context.Background(), "owner@acme.test", "brand-new-pass", ""); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestResetPassword_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture()
	result := register(t, f)

	if err := f.svc.ResetPassword(context.Background(), result.Tokens.AccessToken, "new-pass"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPasswordResetToken_NeverAuthenticates(t *testing.T) {
	f := newAuthFixture()
	result := register(t, f)

	reset, err := f.codec.Issue(result.User.ID, result.Company.ID, string(result.User.Role), token.KindPasswordReset, time.Hour)
	if err != nil {
		t.Fatalf("issue reset token: %v", err)
	}

	resolver := NewResolver(f.users, f.companies, f.codec, f.audit, zerolog.Nop())
	if _, err := resolver.Resolve(context.Background(), reset); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("reset token accepted as access token: %v", err)
	}
}
