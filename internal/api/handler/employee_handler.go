package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/smbsuite/platform/internal/core/domain"
	"github.com/smbsuite/platform/internal/core/ports"
)

// EmployeeHandler serves the employee read endpoints. It demonstrates the
// two-layer isolation contract every tenant-scoped endpoint must follow:
// the repository filters collections by company id at the query level, and
// single fetches go through domain.AssertOwned before the record is
// returned.
type EmployeeHandler struct {
	repo   ports.EmployeeRepository
	audit  ports.AuditSink
	logger zerolog.Logger
}

func NewEmployeeHandler(repo ports.EmployeeRepository, audit ports.AuditSink, logger zerolog.Logger) *EmployeeHandler {
	return &EmployeeHandler{repo: repo, audit: audit, logger: logger}
}

type employeeResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Position  string    `json:"position,omitempty"`
	HiredAt   time.Time `json:"hired_at"`
}

func newEmployeeResponse(e *domain.Employee) employeeResponse {
	return employeeResponse{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Position:  e.Position,
		HiredAt:   e.HiredAt,
	}
}

// List handles GET /api/employees.
//
// @Summary      List employees of the caller's company
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   employeeResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/employees [get]
func (h *EmployeeHandler) List(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	employees, err := h.repo.ListByCompany(c.Request().Context(), principal.CompanyID)
	if err != nil {
		return err
	}

	out := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, newEmployeeResponse(e))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/employees/:id.
//
// @Summary      Get an employee by id
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Employee id"
// @Success      200  {object}  employeeResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/employees/{id} [get]
func (h *EmployeeHandler) Get(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	employee, err := h.repo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "employee not found"})
		}
		return err
	}

	// Last line of defense: the record must belong to the caller's
	// company even if an upstream query forgot its filter.
	if err := domain.AssertOwned(employee, principal.CompanyID, "employee"); err != nil {
		if errors.Is(err, domain.ErrCrossTenant) {
			h.recordCrossTenant(c, principal, employee)
			return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
		}
		return err
	}

	return c.JSON(http.StatusOK, newEmployeeResponse(employee))
}

// recordCrossTenant audits an attempt to fetch a record belonging to
// another company. Dispatched off the request path so the 403 never
// waits on the audit store.
func (h *EmployeeHandler) recordCrossTenant(c echo.Context, principal *domain.Principal, employee *domain.Employee) {
	h.logger.Warn().
		Str("user_id", principal.UserID).
		Str("company_id", principal.CompanyID).
		Str("resource_id", employee.ID).
		Str("resource_company_id", employee.CompanyID).
		Msg("cross-tenant fetch rejected")

	if h.audit == nil {
		return
	}
	event := domain.AuditEvent{
		ActorID:      principal.UserID,
		CompanyID:    principal.CompanyID,
		Action:       domain.AuditCrossTenantFetch,
		ResourceKind: "employee",
		ResourceID:   employee.ID,
		Success:      false,
		Detail: map[string]any{
			"resource_company_id": employee.CompanyID,
		},
		IP:        c.RealIP(),
		Timestamp: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.audit.Record(ctx, event); err != nil {
			h.logger.Error().Err(err).Msg("audit sink write failed")
		}
	}()
}
