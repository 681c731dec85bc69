package services

import (
	"context"
	"time"

	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/ostwerk/billable_app/internal/dto"
)

// TimeEntryReaderSvc defines read operations for time entry data
type TimeEntryReaderSvc interface {
	// GetTimeEntryByID retrieves a specific time entry.
	GetTimeEntryByID(ctx context.Context, companyID, timeEntryID string, requestingUserID string) (*domain.TimeEntry, error)

	// ListTimeEntriesByProject retrieves a paginated list of a project's time entries.
	ListTimeEntriesByProject(ctx context.Context, companyID, projectID string, userID string, params dto.ListTimeEntriesParams) (*dto.ListTimeEntriesResponse, error)

	// ListTimeEntriesByUser retrieves a user's time entries within a date range.
	ListTimeEntriesByUser(ctx context.Context, companyID, targetUserID string, from, to time.Time, requestingUserID string) ([]domain.TimeEntry, error)
}

// TimeEntryWriterSvc defines write operations for time entry data
type TimeEntryWriterSvc interface {
	// CreateTimeEntry logs a new draft time entry.
	CreateTimeEntry(ctx context.Context, companyID string, req dto.CreateTimeEntryRequest, creatorUserID string) (*domain.TimeEntry, error)

	// UpdateTimeEntry updates a draft time entry. Only the owner may edit it.
	UpdateTimeEntry(ctx context.Context, companyID, timeEntryID string, req dto.UpdateTimeEntryRequest, requestingUserID string) (*domain.TimeEntry, error)

	// DeleteTimeEntry removes a draft time entry.
	DeleteTimeEntry(ctx context.Context, companyID, timeEntryID string, requestingUserID string) error
}

// TimeEntryApprovalSvc defines operations that move time entries through the approval flow
type TimeEntryApprovalSvc interface {
	// SubmitTimeEntry moves a draft or rejected entry to SUBMITTED.
	SubmitTimeEntry(ctx context.Context, companyID, timeEntryID string, requestingUserID string) (*domain.TimeEntry, error)

	// ApproveTimeEntry moves a submitted entry to APPROVED. Admin only.
	ApproveTimeEntry(ctx context.Context, companyID, timeEntryID string, approverUserID string) (*domain.TimeEntry, error)

	// RejectTimeEntry moves a submitted entry to REJECTED. Admin only.
	RejectTimeEntry(ctx context.Context, companyID, timeEntryID string, approverUserID string) (*domain.TimeEntry, error)
}

// TimeEntrySvcFacade combines all time-entry-related service interfaces
type TimeEntrySvcFacade interface {
	TimeEntryReaderSvc
	TimeEntryWriterSvc
	TimeEntryApprovalSvc
}
