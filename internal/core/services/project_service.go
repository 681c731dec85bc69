package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
)

// projectService handles project management within a company.
type projectService struct {
	BaseService
	projectRepo  portsrepo.ProjectRepositoryFacade
	customerRepo portsrepo.CustomerReader
}

// NewProjectService creates a new project service.
func NewProjectService(projectRepo portsrepo.ProjectRepositoryFacade, customerRepo portsrepo.CustomerReader, authorizer portssvc.CompanyAuthorizerSvc) portssvc.ProjectSvcFacade {
	return &projectService{
		BaseService:  BaseService{CompanyAuthorizer: authorizer},
		projectRepo:  projectRepo,
		customerRepo: customerRepo,
	}
}

var _ portssvc.ProjectSvcFacade = (*projectService)(nil)

// CreateProject persists a new project under an existing customer.
func (s *projectService) CreateProject(ctx context.Context, companyID string, req dto.CreateProjectRequest, creatorUserID string) (*domain.Project, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	// The customer must exist inside the same company.
	if _, err := s.customerRepo.FindCustomerByID(ctx, companyID, req.CustomerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %s not found", apperrors.ErrValidation, req.CustomerID)
		}
		return nil, fmt.Errorf("failed to validate customer: %w", err)
	}

	billingType := req.BillingType
	if billingType == "" {
		billingType = domain.BillingHourly
	}

	now := time.Now()
	project := domain.Project{
		ProjectID:   uuid.NewString(),
		CompanyID:   companyID,
		CustomerID:  req.CustomerID,
		Name:        req.Name,
		Code:        req.Code,
		HourlyRate:  req.HourlyRate,
		BillingType: billingType,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.projectRepo.SaveProject(ctx, project); err != nil {
		s.LogError(ctx, err, "Failed to save project in repository", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.LogInfo(ctx, "Project created successfully", slog.String("project_id", project.ProjectID), slog.String("customer_id", req.CustomerID))
	return &project, nil
}

// GetProjectByID retrieves a project. Requires READONLY role.
func (s *projectService) GetProjectByID(ctx context.Context, companyID, projectID string, requestingUserID string) (*domain.Project, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindProjectByID(ctx, companyID, projectID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find project by ID in repository", slog.String("project_id", projectID))
		}
		return nil, err
	}
	return project, nil
}

// ListProjects retrieves a paginated list of projects in a company.
func (s *projectService) ListProjects(ctx context.Context, companyID string, userID string, params dto.ListProjectsParams) (*dto.ListProjectsResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	projects, nextToken, err := s.projectRepo.ListProjectsByCompany(ctx, companyID, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list projects from repository", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	resp := dto.ToListProjectsResponse(projects, nextToken)
	return &resp, nil
}

// ListProjectsByCustomer retrieves all projects of a customer.
func (s *projectService) ListProjectsByCustomer(ctx context.Context, companyID, customerID string, requestingUserID string) ([]domain.Project, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.ListProjectsByCustomer(ctx, companyID, customerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list projects by customer", slog.String("customer_id", customerID))
		return nil, fmt.Errorf("failed to list projects for customer %s: %w", customerID, err)
	}
	if projects == nil {
		return []domain.Project{}, nil
	}
	return projects, nil
}

// UpdateProject updates project details. Requires MEMBER role.
func (s *projectService) UpdateProject(ctx context.Context, companyID, projectID string, req dto.UpdateProjectRequest, requestingUserID string) (*domain.Project, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindProjectByID(ctx, companyID, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Code != nil {
		project.Code = *req.Code
	}
	if req.HourlyRate != nil {
		project.HourlyRate = req.HourlyRate
	}
	if req.BillingType != nil {
		project.BillingType = *req.BillingType
	}
	project.LastUpdatedAt = time.Now()
	project.LastUpdatedBy = requestingUserID

	if err := s.projectRepo.UpdateProject(ctx, *project); err != nil {
		s.LogError(ctx, err, "Failed to update project in repository", slog.String("project_id", projectID))
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// DeactivateProject marks a project inactive. Requires ADMIN role.
func (s *projectService) DeactivateProject(ctx context.Context, companyID, projectID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.projectRepo.DeactivateProject(ctx, companyID, projectID, requestingUserID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to deactivate project", slog.String("project_id", projectID))
		}
		return err
	}
	s.LogInfo(ctx, "Project deactivated", slog.String("project_id", projectID), slog.String("company_id", companyID))
	return nil
}
