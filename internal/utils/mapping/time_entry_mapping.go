package mapping

import (
	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/ostwerk/billable_app/internal/models"
)

// ToModelTimeEntry converts a domain TimeEntry to a model TimeEntry
func ToModelTimeEntry(d domain.TimeEntry) models.TimeEntry {
	return models.TimeEntry{
		TimeEntryID: d.TimeEntryID,
		CompanyID:   d.CompanyID,
		ProjectID:   d.ProjectID,
		UserID:      d.UserID,
		EntryDate:   d.EntryDate,
		Hours:       d.Hours,
		HourlyRate:  d.HourlyRate,
		Description: d.Description,
		IsBillable:  d.IsBillable,
		Status:      string(d.Status),
		DocumentID:  d.DocumentID,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTimeEntry converts a model TimeEntry to a domain TimeEntry.
// The effective rate resolves the entry override first, then the joined
// project default, then zero.
func ToDomainTimeEntry(m models.TimeEntry) domain.TimeEntry {
	effective := decimal.Zero
	switch {
	case m.HourlyRate != nil:
		effective = *m.HourlyRate
	case m.ProjectHourlyRate != nil:
		effective = *m.ProjectHourlyRate
	}
	return domain.TimeEntry{
		TimeEntryID:   m.TimeEntryID,
		CompanyID:     m.CompanyID,
		ProjectID:     m.ProjectID,
		UserID:        m.UserID,
		EntryDate:     m.EntryDate,
		Hours:         m.Hours,
		HourlyRate:    m.HourlyRate,
		Description:   m.Description,
		IsBillable:    m.IsBillable,
		Status:        domain.TimeEntryStatus(m.Status),
		DocumentID:    m.DocumentID,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
		ProjectName:   m.ProjectName,
		CustomerName:  m.CustomerName,
		EffectiveRate: effective,
	}
}

// ToDomainTimeEntrySlice converts a slice of model TimeEntries to a slice of domain TimeEntries
func ToDomainTimeEntrySlice(ms []models.TimeEntry) []domain.TimeEntry {
	ds := make([]domain.TimeEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTimeEntry(m)
	}
	return ds
}
