package services

import (
	"context"

	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/ostwerk/billable_app/internal/dto"
)

// CompanyReaderSvc defines read operations for company data
type CompanyReaderSvc interface {
	// GetCompanyByID retrieves a specific company by its ID.
	GetCompanyByID(ctx context.Context, companyID string, requestingUserID string) (*domain.Company, error)

	// ListUserCompanies retrieves companies the user belongs to.
	ListUserCompanies(ctx context.Context, userID string) ([]domain.Company, error)

	// ListCompanyMembers retrieves all users and their roles for a company.
	// Only members of the company can access this data.
	ListCompanyMembers(ctx context.Context, companyID string, requestingUserID string) ([]domain.CompanyMember, error)
}

// CompanyWriterSvc defines write operations for company data
type CompanyWriterSvc interface {
	// CreateCompany persists a new company; the creator becomes its admin.
	CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, creatorUserID string) (*domain.Company, error)

	// UpdateCompany updates company details.
	UpdateCompany(ctx context.Context, companyID string, req dto.UpdateCompanyRequest, requestingUserID string) (*domain.Company, error)
}

// CompanyMembershipSvc defines operations for managing company membership
type CompanyMembershipSvc interface {
	// AddUserToCompany adds a user to a company with a specific role.
	AddUserToCompany(ctx context.Context, addingUserID, targetUserID, companyID string, role domain.CompanyRole) error

	// RemoveUserFromCompany removes a user from a company.
	// Only company admins can remove users.
	RemoveUserFromCompany(ctx context.Context, requestingUserID, targetUserID, companyID string) error

	// UpdateUserCompanyRole updates a user's role in a company.
	// Only company admins can update user roles.
	UpdateUserCompanyRole(ctx context.Context, requestingUserID, targetUserID, companyID string, newRole domain.CompanyRole) error
}

// CompanyAuthorizerSvc defines operations for company authorization
type CompanyAuthorizerSvc interface {
	// AuthorizeUserAction checks if a user has required permissions for a company.
	AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.CompanyRole) error
}

// CompanySvcFacade combines all company-related service interfaces
// This is a facade for clients that need access to all operations
type CompanySvcFacade interface {
	CompanyReaderSvc
	CompanyWriterSvc
	CompanyMembershipSvc
	CompanyAuthorizerSvc
}
