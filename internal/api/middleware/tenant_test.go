package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/smbsuite/platform/internal/core/domain"
	"github.com/smbsuite/platform/internal/token"
)

// recordingSink collects audit events. Writes arrive from dispatch
// goroutines, so access is mutex-guarded and tests wait for events
// instead of reading the slice directly.
type recordingSink struct {
	mu     sync.Mutex
	delay  time.Duration
	events []domain.AuditEvent
}

func (s *recordingSink) Record(_ context.Context, event domain.AuditEvent) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) waitForEvent(t *testing.T) domain.AuditEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		if len(s.events) > 0 {
			ev := s.events[0]
			s.mu.Unlock()
			return ev
		}
		s.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("audit event never recorded")
	return domain.AuditEvent{}
}

func tenantHandler(t *testing.T, called *bool) echo.HandlerFunc {
	t.Helper()
	return func(c echo.Context) error {
		*called = true
		return c.NoContent(http.StatusOK)
	}
}

func TestTenantContext_PublicPathBypassed(t *testing.T) {
	e := echo.New()
	codec := token.NewCodec("secret", "smbsuite")
	sink := &recordingSink{}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	// Even a mismatching header is ignored on a public path.
	req.Header.Set(HeaderCompanyID, "company_b")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := TenantContext(codec, sink, zerolog.Nop())
	if err := mw(tenantHandler(t, &called))(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("public path did not pass through")
	}
}

func TestTenantContext_HeaderTokenMismatchRejectedBeforeHandler(t *testing.T) {
	e := echo.New()
	codec := token.NewCodec("secret", "smbsuite")
	sink := &recordingSink{}

	signed, err := codec.Issue("user_1", "company_a", "employee", token.KindAccess, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	req.Header.Set(HeaderCompanyID, "company_b")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := TenantContext(codec, sink, zerolog.Nop())
	err = mw(tenantHandler(t, &called))(c)
	if err == nil {
		t.Fatalf("expected rejection")
	}
	if called {
		t.Fatalf("handler ran despite tenant mismatch")
	}

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}

	ev := sink.waitForEvent(t)
	if ev.Action != domain.AuditTenantMismatch {
		t.Fatalf("mismatch not audited: %+v", ev)
	}
	if ev.Detail["token_company_id"] != "company_a" || ev.Detail["header_company_id"] != "company_b" {
		t.Fatalf("audit event missing both company ids: %v", ev.Detail)
	}
}

func TestTenantContext_RejectionDoesNotWaitOnAuditSink(t *testing.T) {
	e := echo.New()
	codec := token.NewCodec("secret", "smbsuite")
	sink := &recordingSink{delay: 500 * time.Millisecond}

	signed, err := codec.Issue("user_1", "company_a", "employee", token.KindAccess, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	req.Header.Set(HeaderCompanyID, "company_b")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := TenantContext(codec, sink, zerolog.Nop())
	start := time.Now()
	err = mw(tenantHandler(t, new(bool)))(c)
	elapsed := time.Since(start)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
	if elapsed >= sink.delay {
		t.Fatalf("rejection blocked %v on the audit sink write", elapsed)
	}

	// The event still lands once the sink catches up.
	if ev := sink.waitForEvent(t); ev.Action != domain.AuditTenantMismatch {
		t.Fatalf("mismatch not audited: %+v", ev)
	}
}

func TestTenantContext_MatchingHeaderStashesAdvisory(t *testing.T) {
	e := echo.New()
	codec := token.NewCodec("secret", "smbsuite")

	signed, err := codec.Issue("user_1", "company_a", "manager", token.KindAccess, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	req.Header.Set(HeaderCompanyID, "company_a")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := TenantContext(codec, nil, zerolog.Nop())
	var got Advisory
	var present bool
	err = mw(func(c echo.Context) error {
		got, present = AdvisoryFrom(c)
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !present {
		t.Fatalf("advisory context not stashed")
	}
	if got.CompanyID != "company_a" || got.UserID != "user_1" || got.Role != "manager" {
		t.Fatalf("unexpected advisory: %+v", got)
	}
}

func TestTenantContext_ExpiredTokenStillPeeked(t *testing.T) {
	e := echo.New()
	codec := token.NewCodec("secret", "smbsuite")

	expired, err := codec.Issue("user_1", "company_a", "employee", token.KindAccess, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	req.Header.Set(HeaderCompanyID, "company_b")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// The advisory peek ignores expiry, so the mismatch must still be caught.
	mw := TenantContext(codec, nil, zerolog.Nop())
	err = mw(tenantHandler(t, new(bool)))(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 from expired-token mismatch, got %v", err)
	}
}

func TestTenantContext_GarbageTokenSwallowed(t *testing.T) {
	e := echo.New()
	codec := token.NewCodec("secret", "smbsuite")

	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := TenantContext(codec, nil, zerolog.Nop())
	if err := mw(tenantHandler(t, &called))(c); err != nil {
		t.Fatalf("garbage token must not be rejected here: %v", err)
	}
	if !called {
		t.Fatalf("request with undecodable token did not pass through")
	}
}

func TestTenantContext_NoAuthorizationHeaderPassesThrough(t *testing.T) {
	e := echo.New()
	codec := token.NewCodec("secret", "smbsuite")

	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := TenantContext(codec, nil, zerolog.Nop())
	if err := mw(tenantHandler(t, &called))(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("anonymous request did not pass through")
	}
}
