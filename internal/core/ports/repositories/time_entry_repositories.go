package repositories

import (
	"context"
	"time"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// TimeEntryReader defines read operations for time entry data
type TimeEntryReader interface {
	// FindTimeEntryByID retrieves a specific time entry within a company.
	FindTimeEntryByID(ctx context.Context, companyID, timeEntryID string) (*domain.TimeEntry, error)

	// FindTimeEntriesByIDs retrieves the given time entries, company scoped.
	FindTimeEntriesByIDs(ctx context.Context, companyID string, timeEntryIDs []string) ([]domain.TimeEntry, error)

	// ListTimeEntriesByProject retrieves a paginated list of time entries for a project using token-based pagination.
	ListTimeEntriesByProject(ctx context.Context, companyID, projectID string, limit int, nextToken *string) ([]domain.TimeEntry, *string, error)

	// ListTimeEntriesByUser retrieves a user's time entries within a date range.
	ListTimeEntriesByUser(ctx context.Context, companyID, userID string, from, to time.Time) ([]domain.TimeEntry, error)

	// FindUnbilledTimeEntries retrieves approved, billable, not yet invoiced
	// time entries, optionally restricted to a customer. Results carry joined
	// project and customer names and the project default rate.
	FindUnbilledTimeEntries(ctx context.Context, companyID string, customerID *string) ([]domain.TimeEntry, error)

	// FindUnbilledTimeEntriesInRange retrieves unbilled entries of a project
	// whose entry date falls within [from, to].
	FindUnbilledTimeEntriesInRange(ctx context.Context, companyID, projectID string, from, to time.Time) ([]domain.TimeEntry, error)
}

// TimeEntryWriter defines write operations for time entry data
type TimeEntryWriter interface {
	// SaveTimeEntry persists a new time entry.
	SaveTimeEntry(ctx context.Context, entry domain.TimeEntry) error

	// UpdateTimeEntry updates the editable fields of a draft time entry.
	UpdateTimeEntry(ctx context.Context, entry domain.TimeEntry) error

	// UpdateTimeEntryStatus moves a time entry through the approval flow.
	UpdateTimeEntryStatus(ctx context.Context, companyID, timeEntryID string, status domain.TimeEntryStatus, updatedBy string, updatedAt time.Time) error

	// DeleteTimeEntry removes a time entry.
	DeleteTimeEntry(ctx context.Context, companyID, timeEntryID string) error
}

// TimeEntryRepositoryFacade combines all time-entry-related repository interfaces
// This is a facade for clients that need access to all operations
type TimeEntryRepositoryFacade interface {
	TimeEntryReader
	TimeEntryWriter
}
