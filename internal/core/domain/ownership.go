package domain

import "fmt"

// TenantScoped is implemented by every entity partitioned by company.
type TenantScoped interface {
	TenantID() string
}

// AssertOwned is the last line of defense against cross-tenant leakage.
// It must be invoked after any single-entity fetch, before the entity is
// returned, mutated, or deleted. Collection queries must additionally
// filter by company id at the query level; this check only covers the
// single-entity path.
//
// A resource that does not implement TenantScoped is a programming error,
// not a runtime condition, and surfaces as an internal error.
func AssertOwned(resource any, companyID, kind string) error {
	scoped, ok := resource.(TenantScoped)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotTenantScoped, kind)
	}
	if scoped.TenantID() != companyID {
		return fmt.Errorf("%w: %s", ErrCrossTenant, kind)
	}
	return nil
}
