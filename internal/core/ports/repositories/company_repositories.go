package repositories

import (
	"context"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// CompanyReader defines read operations for company data
type CompanyReader interface {
	// FindCompanyByID retrieves a specific company by its ID.
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// ListCompaniesByUserID retrieves all companies a user belongs to.
	ListCompaniesByUserID(ctx context.Context, userID string) ([]domain.Company, error)
}

// CompanyWriter defines write operations for company data
type CompanyWriter interface {
	// SaveCompany persists a new company.
	SaveCompany(ctx context.Context, company domain.Company) error

	// UpdateCompany updates an existing company's details.
	UpdateCompany(ctx context.Context, company domain.Company) error
}

// CompanyMembershipManager defines operations for managing company memberships
type CompanyMembershipManager interface {
	// AddUserToCompany adds a user to a company with a specific role.
	AddUserToCompany(ctx context.Context, membership domain.CompanyMember) error

	// FindUserCompanyRole retrieves the role of a user in a company.
	FindUserCompanyRole(ctx context.Context, userID, companyID string) (*domain.CompanyMember, error)

	// UpdateUserCompanyRole changes the role of an existing member.
	UpdateUserCompanyRole(ctx context.Context, userID, companyID string, role domain.CompanyRole, updatedBy string) error

	// ListCompanyMembers retrieves all members of a company.
	ListCompanyMembers(ctx context.Context, companyID string) ([]domain.CompanyMember, error)
}

// CompanyRepositoryFacade combines all company-related repository interfaces
// This is a facade for clients that need access to all operations
type CompanyRepositoryFacade interface {
	CompanyReader
	CompanyWriter
	CompanyMembershipManager
}
