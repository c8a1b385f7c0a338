package domain

import "time"

// Role is the privilege tier of a user inside its company. Roles are
// strictly ordered: a higher role satisfies every gate a lower one does.
type Role string

const (
	RoleEmployee     Role = "employee"
	RoleManager      Role = "manager"
	RoleCompanyAdmin Role = "company_admin"
	RoleSuperAdmin   Role = "super_admin"
)

// roleRank maps each role to its position in the hierarchy.
var roleRank = map[Role]int{
	RoleEmployee:     0,
	RoleManager:      1,
	RoleCompanyAdmin: 2,
	RoleSuperAdmin:   3,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries the privileges of min or higher.
// Unknown roles never satisfy any gate.
func (r Role) AtLeast(min Role) bool {
	rr, ok := roleRank[r]
	if !ok {
		return false
	}
	mr, ok := roleRank[min]
	if !ok {
		return false
	}
	return rr >= mr
}

// User models an authenticated actor. Every user belongs to exactly one
// company; CompanyID is the tenant key for all of the user's data.
type User struct {
	ID           string     `json:"id"`
	CompanyID    string     `json:"company_id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FullName returns the display name.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Principal is the resolved identity and tenant context for the current
// request. It is constructed once per request by the principal resolver,
// only after signature, expiry, tenant-binding, company-status, and
// account-status checks have all passed, and is discarded at response time.
type Principal struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	// IsActive is denormalized from the user record at resolve time. The
	// resolver rejects inactive accounts, so a resolved principal always
	// carries true; the field exists for serialization of the identity.
	IsActive bool `json:"is_active"`
}
