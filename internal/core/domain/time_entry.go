package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntryStatus tracks a time entry through the approval flow.
// INVOICED is terminal and only ever set by invoice creation.
type TimeEntryStatus string

const (
	TimeEntryDraft     TimeEntryStatus = "DRAFT"
	TimeEntrySubmitted TimeEntryStatus = "SUBMITTED"
	TimeEntryApproved  TimeEntryStatus = "APPROVED"
	TimeEntryRejected  TimeEntryStatus = "REJECTED"
	TimeEntryInvoiced  TimeEntryStatus = "INVOICED"
)

// TimeEntry records hours an employee worked on a project on a given day.
// Once DocumentID is set the entry is immutable billing input.
type TimeEntry struct {
	TimeEntryID string          `json:"timeEntryID"` // Primary Key (UUID)
	CompanyID   string          `json:"companyID"`   // FK -> companies
	ProjectID   string          `json:"projectID"`
	UserID      string          `json:"userID"` // The employee who logged the hours
	EntryDate   time.Time       `json:"entryDate"`
	Hours       decimal.Decimal `json:"hours"`
	// HourlyRate overrides the project default when set.
	HourlyRate  *decimal.Decimal `json:"hourlyRate,omitempty"`
	Description string           `json:"description"`
	IsBillable  bool             `json:"isBillable"`
	Status      TimeEntryStatus  `json:"status"`
	// DocumentID links the entry to the invoice that consumed it.
	DocumentID *string `json:"documentID,omitempty"`
	AuditFields

	// Denormalized for unbilled listings; not persisted on the entry itself.
	ProjectName  string `json:"projectName,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
	// EffectiveRate is the resolved entry-level or project-level rate.
	EffectiveRate decimal.Decimal `json:"effectiveRate"`
}

// CanTransitionTo reports whether the approval state machine allows moving
// from the current status to target.
func (s TimeEntryStatus) CanTransitionTo(target TimeEntryStatus) bool {
	switch s {
	case TimeEntryDraft:
		return target == TimeEntrySubmitted
	case TimeEntrySubmitted:
		return target == TimeEntryApproved || target == TimeEntryRejected
	case TimeEntryRejected:
		return target == TimeEntrySubmitted // resubmission after fixing
	case TimeEntryApproved:
		return target == TimeEntryInvoiced
	case TimeEntryInvoiced:
		return false
	}
	return false
}
