package ports

import (
	"context"
	"time"

	"github.com/smbsuite/platform/internal/core/domain"
)

// UserRepository defines the persistence interface for credential records.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// CompanyRepository defines the persistence interface for tenant records.
type CompanyRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Company, error)
	FindByEmail(ctx context.Context, email string) (*domain.Company, error)
	Create(ctx context.Context, company *domain.Company) (*domain.Company, error)
	Delete(ctx context.Context, id string) error
}

// EmployeeRepository is the read surface for the sample tenant-scoped
// resource. Every query is company-filtered at the repository level.
type EmployeeRepository interface {
	ListByCompany(ctx context.Context, companyID string) ([]*domain.Employee, error)
	FindByID(ctx context.Context, id string) (*domain.Employee, error)
}
