package repositories

import (
	"context"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// ProjectReader defines read operations for project data
type ProjectReader interface {
	// FindProjectByID retrieves a specific project within a company.
	FindProjectByID(ctx context.Context, companyID, projectID string) (*domain.Project, error)

	// ListProjectsByCompany retrieves a paginated list of projects for a company using token-based pagination.
	ListProjectsByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Project, *string, error)

	// ListProjectsByCustomer retrieves all projects belonging to a customer.
	ListProjectsByCustomer(ctx context.Context, companyID, customerID string) ([]domain.Project, error)
}

// ProjectWriter defines write operations for project data
type ProjectWriter interface {
	// SaveProject persists a new project.
	SaveProject(ctx context.Context, project domain.Project) error

	// UpdateProject updates an existing project's details.
	UpdateProject(ctx context.Context, project domain.Project) error

	// DeactivateProject marks a project inactive (soft delete).
	DeactivateProject(ctx context.Context, companyID, projectID string, updatedBy string) error
}

// ProjectRepositoryFacade combines all project-related repository interfaces
// This is a facade for clients that need access to all operations
type ProjectRepositoryFacade interface {
	ProjectReader
	ProjectWriter
}
