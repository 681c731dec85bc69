package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// CreateTimeEntryRequest defines data for logging a new time entry.
type CreateTimeEntryRequest struct {
	ProjectID   string           `json:"projectID" binding:"required"`
	EntryDate   time.Time        `json:"entryDate" binding:"required"`
	Hours       decimal.Decimal  `json:"hours" binding:"required"`
	HourlyRate  *decimal.Decimal `json:"hourlyRate"`
	Description string           `json:"description"`
	IsBillable  *bool            `json:"isBillable"` // defaults to true when omitted
}

// UpdateTimeEntryRequest defines the updatable fields of a draft time entry.
type UpdateTimeEntryRequest struct {
	EntryDate   *time.Time       `json:"entryDate"`
	Hours       *decimal.Decimal `json:"hours"`
	HourlyRate  *decimal.Decimal `json:"hourlyRate"`
	Description *string          `json:"description"`
	IsBillable  *bool            `json:"isBillable"`
}

// ListTimeEntriesParams defines query parameters for listing time entries.
type ListTimeEntriesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// TimeEntryResponse defines data returned for a time entry.
type TimeEntryResponse struct {
	TimeEntryID   string                 `json:"timeEntryID"`
	CompanyID     string                 `json:"companyID"`
	ProjectID     string                 `json:"projectID"`
	ProjectName   string                 `json:"projectName,omitempty"`
	CustomerName  string                 `json:"customerName,omitempty"`
	UserID        string                 `json:"userID"`
	EntryDate     time.Time              `json:"entryDate"`
	Hours         decimal.Decimal        `json:"hours"`
	HourlyRate    *decimal.Decimal       `json:"hourlyRate,omitempty"`
	EffectiveRate decimal.Decimal        `json:"effectiveRate"`
	Description   string                 `json:"description"`
	IsBillable    bool                   `json:"isBillable"`
	Status        domain.TimeEntryStatus `json:"status"`
	DocumentID    *string                `json:"documentID,omitempty"`
}

// ToTimeEntryResponse converts domain.TimeEntry to DTO.
func ToTimeEntryResponse(e *domain.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		TimeEntryID:   e.TimeEntryID,
		CompanyID:     e.CompanyID,
		ProjectID:     e.ProjectID,
		ProjectName:   e.ProjectName,
		CustomerName:  e.CustomerName,
		UserID:        e.UserID,
		EntryDate:     e.EntryDate,
		Hours:         e.Hours,
		HourlyRate:    e.HourlyRate,
		EffectiveRate: e.EffectiveRate,
		Description:   e.Description,
		IsBillable:    e.IsBillable,
		Status:        e.Status,
		DocumentID:    e.DocumentID,
	}
}

// ToTimeEntryResponses converts a slice of domain.TimeEntry to DTOs.
func ToTimeEntryResponses(es []domain.TimeEntry) []TimeEntryResponse {
	list := make([]TimeEntryResponse, len(es))
	for i, e := range es {
		list[i] = ToTimeEntryResponse(&e)
	}
	return list
}

// ListTimeEntriesResponse wraps a paginated list of time entries.
type ListTimeEntriesResponse struct {
	TimeEntries []TimeEntryResponse `json:"timeEntries"`
	NextToken   *string             `json:"nextToken,omitempty"`
}
