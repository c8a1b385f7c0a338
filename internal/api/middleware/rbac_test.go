package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/smbsuite/platform/internal/core/domain"
)

func gateRequest(t *testing.T, role domain.Role, gate echo.MiddlewareFunc) (int, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	SetPrincipal(c, &domain.Principal{UserID: "u", CompanyID: "co", Role: role})

	called := false
	err := gate(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	if err == nil {
		return http.StatusOK, called
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("unexpected error type: %v", err)
	}
	return he.Code, called
}

func TestRequireRole_Hierarchy(t *testing.T) {
	gates := []struct {
		name string
		gate echo.MiddlewareFunc
		min  domain.Role
	}{
		{"employee-or-above", RequireEmployee(), domain.RoleEmployee},
		{"manager-or-above", RequireManager(), domain.RoleManager},
		{"admin-or-above", RequireAdmin(), domain.RoleCompanyAdmin},
	}
	roles := []domain.Role{domain.RoleEmployee, domain.RoleManager, domain.RoleCompanyAdmin, domain.RoleSuperAdmin}

	for _, g := range gates {
		for _, role := range roles {
			code, called := gateRequest(t, role, g.gate)
			wantPass := role.AtLeast(g.min)
			if wantPass && (code != http.StatusOK || !called) {
				t.Errorf("%s: role %s should pass, got %d", g.name, role, code)
			}
			if !wantPass && (code != http.StatusForbidden || called) {
				t.Errorf("%s: role %s should be forbidden, got %d", g.name, role, code)
			}
		}
	}
}

func TestRequireRole_SuperAdminPassesEveryGate(t *testing.T) {
	for _, gate := range []echo.MiddlewareFunc{RequireEmployee(), RequireManager(), RequireAdmin()} {
		if code, _ := gateRequest(t, domain.RoleSuperAdmin, gate); code != http.StatusOK {
			t.Fatalf("super_admin blocked with %d", code)
		}
	}
}

func TestRequireRole_MissingPrincipal(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireManager()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %v", err)
	}
}
