package domain

import "time"

// CompanyStatus represents the lifecycle state of a tenant.
type CompanyStatus string

const (
	CompanyActive   CompanyStatus = "active"
	CompanyInactive CompanyStatus = "inactive"
)

// Company is the tenant. Every tenant-scoped row in the system carries a
// non-null company id foreign key back to one of these.
type Company struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone,omitempty"`
	Address   string        `json:"address,omitempty"`
	TaxID     string        `json:"tax_id,omitempty"`
	Status    CompanyStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
