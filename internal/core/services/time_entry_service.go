package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
)

var (
	ErrHoursNotPositive   = errors.New("hours must be positive")
	ErrNotEntryOwner      = errors.New("only the owner may modify a time entry")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrEntryNotEditable   = errors.New("only draft time entries can be edited")
	ErrProjectNotBillable = errors.New("project is not active")
)

// timeEntryService handles time logging and its approval flow.
type timeEntryService struct {
	BaseService
	timeEntryRepo portsrepo.TimeEntryRepositoryFacade
	projectRepo   portsrepo.ProjectReader
}

// NewTimeEntryService creates a new time entry service.
func NewTimeEntryService(timeEntryRepo portsrepo.TimeEntryRepositoryFacade, projectRepo portsrepo.ProjectReader, authorizer portssvc.CompanyAuthorizerSvc) portssvc.TimeEntrySvcFacade {
	return &timeEntryService{
		BaseService:   BaseService{CompanyAuthorizer: authorizer},
		timeEntryRepo: timeEntryRepo,
		projectRepo:   projectRepo,
	}
}

var _ portssvc.TimeEntrySvcFacade = (*timeEntryService)(nil)

// CreateTimeEntry logs a new draft time entry for the creator.
func (s *timeEntryService) CreateTimeEntry(ctx context.Context, companyID string, req dto.CreateTimeEntryRequest, creatorUserID string) (*domain.TimeEntry, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}
	if req.Hours.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrHoursNotPositive)
	}

	project, err := s.projectRepo.FindProjectByID(ctx, companyID, req.ProjectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: project %s not found", apperrors.ErrValidation, req.ProjectID)
		}
		return nil, fmt.Errorf("failed to validate project: %w", err)
	}
	if !project.IsActive {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrProjectNotBillable)
	}

	isBillable := true
	if req.IsBillable != nil {
		isBillable = *req.IsBillable
	}

	now := time.Now()
	entry := domain.TimeEntry{
		TimeEntryID: uuid.NewString(),
		CompanyID:   companyID,
		ProjectID:   req.ProjectID,
		UserID:      creatorUserID,
		EntryDate:   req.EntryDate,
		Hours:       req.Hours,
		HourlyRate:  req.HourlyRate,
		Description: req.Description,
		IsBillable:  isBillable,
		Status:      domain.TimeEntryDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.timeEntryRepo.SaveTimeEntry(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save time entry in repository", slog.String("project_id", req.ProjectID))
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	s.LogInfo(ctx, "Time entry created", slog.String("time_entry_id", entry.TimeEntryID), slog.String("project_id", req.ProjectID))
	return &entry, nil
}

// GetTimeEntryByID retrieves a time entry. Requires READONLY role.
func (s *timeEntryService) GetTimeEntryByID(ctx context.Context, companyID, timeEntryID string, requestingUserID string) (*domain.TimeEntry, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	entry, err := s.timeEntryRepo.FindTimeEntryByID(ctx, companyID, timeEntryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find time entry by ID in repository", slog.String("time_entry_id", timeEntryID))
		}
		return nil, err
	}
	return entry, nil
}

// ListTimeEntriesByProject retrieves a paginated list of a project's time entries.
func (s *timeEntryService) ListTimeEntriesByProject(ctx context.Context, companyID, projectID string, userID string, params dto.ListTimeEntriesParams) (*dto.ListTimeEntriesResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	entries, nextToken, err := s.timeEntryRepo.ListTimeEntriesByProject(ctx, companyID, projectID, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list time entries from repository", slog.String("project_id", projectID))
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	return &dto.ListTimeEntriesResponse{
		TimeEntries: dto.ToTimeEntryResponses(entries),
		NextToken:   nextToken,
	}, nil
}

// ListTimeEntriesByUser retrieves a user's time entries within a date range.
// Members may only list their own entries; admins may list anyone's.
func (s *timeEntryService) ListTimeEntriesByUser(ctx context.Context, companyID, targetUserID string, from, to time.Time, requestingUserID string) ([]domain.TimeEntry, error) {
	requiredRole := domain.RoleReadOnly
	if targetUserID != requestingUserID {
		requiredRole = domain.RoleAdmin
	}
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, requiredRole); err != nil {
		return nil, err
	}
	entries, err := s.timeEntryRepo.ListTimeEntriesByUser(ctx, companyID, targetUserID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to list time entries by user", slog.String("target_user_id", targetUserID))
		return nil, fmt.Errorf("failed to list time entries for user %s: %w", targetUserID, err)
	}
	if entries == nil {
		return []domain.TimeEntry{}, nil
	}
	return entries, nil
}

// UpdateTimeEntry updates a draft time entry. Only the owner may edit it.
func (s *timeEntryService) UpdateTimeEntry(ctx context.Context, companyID, timeEntryID string, req dto.UpdateTimeEntryRequest, requestingUserID string) (*domain.TimeEntry, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	entry, err := s.timeEntryRepo.FindTimeEntryByID(ctx, companyID, timeEntryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != requestingUserID {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrForbidden, ErrNotEntryOwner)
	}
	if entry.Status != domain.TimeEntryDraft {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrEntryNotEditable)
	}

	if req.EntryDate != nil {
		entry.EntryDate = *req.EntryDate
	}
	if req.Hours != nil {
		if req.Hours.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrHoursNotPositive)
		}
		entry.Hours = *req.Hours
	}
	if req.HourlyRate != nil {
		entry.HourlyRate = req.HourlyRate
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.IsBillable != nil {
		entry.IsBillable = *req.IsBillable
	}
	entry.LastUpdatedAt = time.Now()
	entry.LastUpdatedBy = requestingUserID

	if err := s.timeEntryRepo.UpdateTimeEntry(ctx, *entry); err != nil {
		s.LogError(ctx, err, "Failed to update time entry in repository", slog.String("time_entry_id", timeEntryID))
		return nil, err
	}
	return entry, nil
}

// DeleteTimeEntry removes a draft time entry. Only the owner may delete it.
func (s *timeEntryService) DeleteTimeEntry(ctx context.Context, companyID, timeEntryID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return err
	}

	entry, err := s.timeEntryRepo.FindTimeEntryByID(ctx, companyID, timeEntryID)
	if err != nil {
		return err
	}
	if entry.UserID != requestingUserID {
		return fmt.Errorf("%w: %v", apperrors.ErrForbidden, ErrNotEntryOwner)
	}
	if entry.Status != domain.TimeEntryDraft {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrEntryNotEditable)
	}

	if err := s.timeEntryRepo.DeleteTimeEntry(ctx, companyID, timeEntryID); err != nil {
		s.LogError(ctx, err, "Failed to delete time entry", slog.String("time_entry_id", timeEntryID))
		return err
	}
	s.LogInfo(ctx, "Time entry deleted", slog.String("time_entry_id", timeEntryID))
	return nil
}

// SubmitTimeEntry moves a draft or rejected entry to SUBMITTED. Owner only.
func (s *timeEntryService) SubmitTimeEntry(ctx context.Context, companyID, timeEntryID string, requestingUserID string) (*domain.TimeEntry, error) {
	return s.transition(ctx, companyID, timeEntryID, domain.TimeEntrySubmitted, requestingUserID, true)
}

// ApproveTimeEntry moves a submitted entry to APPROVED. Admin only.
func (s *timeEntryService) ApproveTimeEntry(ctx context.Context, companyID, timeEntryID string, approverUserID string) (*domain.TimeEntry, error) {
	if err := s.AuthorizeUser(ctx, approverUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.transition(ctx, companyID, timeEntryID, domain.TimeEntryApproved, approverUserID, false)
}

// RejectTimeEntry moves a submitted entry to REJECTED. Admin only.
func (s *timeEntryService) RejectTimeEntry(ctx context.Context, companyID, timeEntryID string, approverUserID string) (*domain.TimeEntry, error) {
	if err := s.AuthorizeUser(ctx, approverUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.transition(ctx, companyID, timeEntryID, domain.TimeEntryRejected, approverUserID, false)
}

// transition applies one approval state machine step. ownerOnly restricts the
// move to the entry's owner (submission); approval steps are gated by role
// in the callers.
func (s *timeEntryService) transition(ctx context.Context, companyID, timeEntryID string, target domain.TimeEntryStatus, actorUserID string, ownerOnly bool) (*domain.TimeEntry, error) {
	if ownerOnly {
		if err := s.AuthorizeUser(ctx, actorUserID, companyID, domain.RoleMember); err != nil {
			return nil, err
		}
	}

	entry, err := s.timeEntryRepo.FindTimeEntryByID(ctx, companyID, timeEntryID)
	if err != nil {
		return nil, err
	}
	if ownerOnly && entry.UserID != actorUserID {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrForbidden, ErrNotEntryOwner)
	}
	if !entry.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %v: %s -> %s", apperrors.ErrValidation, ErrInvalidTransition, entry.Status, target)
	}

	now := time.Now()
	if err := s.timeEntryRepo.UpdateTimeEntryStatus(ctx, companyID, timeEntryID, target, actorUserID, now); err != nil {
		s.LogError(ctx, err, "Failed to update time entry status", slog.String("time_entry_id", timeEntryID), slog.String("target_status", string(target)))
		return nil, err
	}

	entry.Status = target
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actorUserID
	s.LogInfo(ctx, "Time entry status changed", slog.String("time_entry_id", timeEntryID), slog.String("status", string(target)))
	return entry, nil
}
