package services

import (
	"context"

	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/ostwerk/billable_app/internal/dto"
)

// ProjectReaderSvc defines read operations for project data
type ProjectReaderSvc interface {
	// GetProjectByID retrieves a specific project.
	GetProjectByID(ctx context.Context, companyID, projectID string, requestingUserID string) (*domain.Project, error)

	// ListProjects retrieves a paginated list of projects in a company.
	ListProjects(ctx context.Context, companyID string, userID string, params dto.ListProjectsParams) (*dto.ListProjectsResponse, error)

	// ListProjectsByCustomer retrieves all projects of a customer.
	ListProjectsByCustomer(ctx context.Context, companyID, customerID string, requestingUserID string) ([]domain.Project, error)
}

// ProjectWriterSvc defines write operations for project data
type ProjectWriterSvc interface {
	// CreateProject persists a new project under an existing customer.
	CreateProject(ctx context.Context, companyID string, req dto.CreateProjectRequest, creatorUserID string) (*domain.Project, error)

	// UpdateProject updates project details.
	UpdateProject(ctx context.Context, companyID, projectID string, req dto.UpdateProjectRequest, requestingUserID string) (*domain.Project, error)

	// DeactivateProject marks a project inactive.
	DeactivateProject(ctx context.Context, companyID, projectID string, requestingUserID string) error
}

// ProjectSvcFacade combines all project-related service interfaces
type ProjectSvcFacade interface {
	ProjectReaderSvc
	ProjectWriterSvc
}
