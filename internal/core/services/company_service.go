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
	"github.com/ostwerk/billable_app/internal/middleware"
)

// roleRank orders company roles for the hierarchy check. A higher rank
// implies every permission of the lower ranks.
var roleRank = map[domain.CompanyRole]int{
	domain.RoleReadOnly: 1,
	domain.RoleMember:   2,
	domain.RoleAdmin:    3,
}

// companyService handles business logic related to companies and memberships.
type companyService struct {
	companyRepo portsrepo.CompanyRepositoryFacade
	userRepo    portsrepo.UserReader
}

// NewCompanyService creates a new company service.
func NewCompanyService(companyRepo portsrepo.CompanyRepositoryFacade, userRepo portsrepo.UserReader) portssvc.CompanySvcFacade {
	return &companyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
	}
}

var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// CreateCompany creates a new company and makes the creator the initial admin.
func (s *companyService) CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, creatorUserID string) (*domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	company := domain.Company{
		CompanyID:           uuid.NewString(),
		Name:                req.Name,
		LegalName:           req.LegalName,
		Address:             req.Address,
		VATNumber:           req.VATNumber,
		DefaultCurrencyCode: req.DefaultCurrencyCode,
		InvoiceNumberPrefix: req.InvoiceNumberPrefix,
		IsActive:            true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		logger.Error("Failed to save company in repository", slog.String("error", err.Error()), slog.String("company_name", req.Name))
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	membership := domain.CompanyMember{
		UserID:    creatorUserID,
		CompanyID: company.CompanyID,
		Role:      domain.RoleAdmin,
		JoinedAt:  now,
	}
	if err := s.companyRepo.AddUserToCompany(ctx, membership); err != nil {
		logger.Error("Failed to add creator as admin to new company", slog.String("error", err.Error()), slog.String("company_id", company.CompanyID), slog.String("user_id", creatorUserID))
		return nil, fmt.Errorf("failed to add creator to company: %w", err)
	}

	logger.Info("Company created successfully", slog.String("company_id", company.CompanyID), slog.String("creator_user_id", creatorUserID))
	return &company, nil
}

// GetCompanyByID retrieves a company; any member may read it.
func (s *companyService) GetCompanyByID(ctx context.Context, companyID string, requestingUserID string) (*domain.Company, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find company by ID in repository", slog.String("error", err.Error()), slog.String("company_id", companyID))
		}
		return nil, err
	}
	return company, nil
}

// ListUserCompanies retrieves the companies a user belongs to.
func (s *companyService) ListUserCompanies(ctx context.Context, userID string) ([]domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	companies, err := s.companyRepo.ListCompaniesByUserID(ctx, userID)
	if err != nil {
		logger.Error("Failed to list companies for user from repository", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list companies for user %s: %w", userID, err)
	}
	if companies == nil {
		return []domain.Company{}, nil
	}
	return companies, nil
}

// UpdateCompany updates company details. Admin only.
func (s *companyService) UpdateCompany(ctx context.Context, companyID string, req dto.UpdateCompanyRequest, requestingUserID string) (*domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.LegalName != nil {
		company.LegalName = *req.LegalName
	}
	if req.Address != nil {
		company.Address = *req.Address
	}
	if req.VATNumber != nil {
		company.VATNumber = *req.VATNumber
	}
	if req.InvoiceNumberPrefix != nil {
		company.InvoiceNumberPrefix = *req.InvoiceNumberPrefix
	}
	company.LastUpdatedAt = time.Now()
	company.LastUpdatedBy = requestingUserID

	if err := s.companyRepo.UpdateCompany(ctx, *company); err != nil {
		logger.Error("Failed to update company in repository", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	logger.Info("Company updated successfully", slog.String("company_id", companyID), slog.String("updated_by", requestingUserID))
	return company, nil
}

// AddUserToCompany adds a user to a company with a specific role.
func (s *companyService) AddUserToCompany(ctx context.Context, addingUserID, targetUserID, companyID string, role domain.CompanyRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, addingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	// Validate the target user actually exists before creating a membership.
	if _, err := s.userRepo.FindUserByID(ctx, targetUserID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user %s not found", apperrors.ErrValidation, targetUserID)
		}
		return fmt.Errorf("failed to validate target user: %w", err)
	}

	membership := domain.CompanyMember{
		UserID:    targetUserID,
		CompanyID: companyID,
		Role:      role,
		JoinedAt:  time.Now(),
	}
	if err := s.companyRepo.AddUserToCompany(ctx, membership); err != nil {
		logger.Error("Failed to add user to company in repository", slog.String("error", err.Error()), slog.String("target_user_id", targetUserID), slog.String("company_id", companyID))
		return fmt.Errorf("failed to add user %s to company %s: %w", targetUserID, companyID, err)
	}

	logger.Info("User added to company successfully", slog.String("target_user_id", targetUserID), slog.String("company_id", companyID), slog.String("role", string(role)), slog.String("added_by_user_id", addingUserID))
	return nil
}

// RemoveUserFromCompany marks a membership REMOVED. Admin only; admins
// cannot remove themselves.
func (s *companyService) RemoveUserFromCompany(ctx context.Context, requestingUserID, targetUserID, companyID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}
	if requestingUserID == targetUserID {
		return fmt.Errorf("%w: admins cannot remove themselves from a company", apperrors.ErrValidation)
	}

	if err := s.companyRepo.UpdateUserCompanyRole(ctx, targetUserID, companyID, domain.RoleRemoved, requestingUserID); err != nil {
		logger.Error("Failed to remove user from company", slog.String("error", err.Error()), slog.String("target_user_id", targetUserID), slog.String("company_id", companyID))
		return err
	}

	logger.Info("User removed from company", slog.String("target_user_id", targetUserID), slog.String("company_id", companyID), slog.String("removed_by", requestingUserID))
	return nil
}

// UpdateUserCompanyRole changes a member's role. Admin only.
func (s *companyService) UpdateUserCompanyRole(ctx context.Context, requestingUserID, targetUserID, companyID string, newRole domain.CompanyRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}
	if requestingUserID == targetUserID && newRole != domain.RoleAdmin {
		return fmt.Errorf("%w: admins cannot demote themselves", apperrors.ErrValidation)
	}

	if err := s.companyRepo.UpdateUserCompanyRole(ctx, targetUserID, companyID, newRole, requestingUserID); err != nil {
		logger.Error("Failed to update member role", slog.String("error", err.Error()), slog.String("target_user_id", targetUserID), slog.String("company_id", companyID))
		return err
	}

	logger.Info("Member role updated", slog.String("target_user_id", targetUserID), slog.String("company_id", companyID), slog.String("new_role", string(newRole)))
	return nil
}

// ListCompanyMembers lists all memberships of a company. Any member may read.
func (s *companyService) ListCompanyMembers(ctx context.Context, companyID string, requestingUserID string) ([]domain.CompanyMember, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	members, err := s.companyRepo.ListCompanyMembers(ctx, companyID)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list company members", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list members of company %s: %w", companyID, err)
	}
	if members == nil {
		return []domain.CompanyMember{}, nil
	}
	return members, nil
}

// AuthorizeUserAction checks if a user has the required role (or higher) within a company.
// Returns apperrors.ErrNotFound if the user is not a member, to avoid
// revealing company existence. Returns apperrors.ErrForbidden if the user is
// a member but lacks the required role.
func (s *companyService) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.CompanyRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	membership, err := s.companyRepo.FindUserCompanyRole(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Authorization failed: user not a member of company", slog.String("user_id", userID), slog.String("company_id", companyID))
			return apperrors.ErrNotFound
		}
		logger.Error("Failed to check user company role in repository", slog.String("error", err.Error()), slog.String("user_id", userID), slog.String("company_id", companyID))
		return fmt.Errorf("failed to check authorization: %w", err)
	}

	if roleRank[membership.Role] >= roleRank[requiredRole] && roleRank[membership.Role] > 0 {
		return nil
	}

	logger.Warn("Authorization failed: user lacks required role", slog.String("user_id", userID), slog.String("company_id", companyID), slog.String("user_role", string(membership.Role)), slog.String("required_role", string(requiredRole)))
	return apperrors.ErrForbidden
}
