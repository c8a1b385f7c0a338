package domain

import "time"

// Employee is a tenant-scoped business record. Only the read surface is
// exposed here; it exists primarily to exercise the two-layer tenant
// isolation contract (query-level filter plus AssertOwned on single fetch).
type Employee struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Position  string    `json:"position,omitempty"`
	Salary    float64   `json:"salary,omitempty"`
	HiredAt   time.Time `json:"hired_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TenantID implements TenantScoped.
func (e *Employee) TenantID() string { return e.CompanyID }
