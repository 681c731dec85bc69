package mapping

import (
	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/ostwerk/billable_app/internal/models"
)

// ToModelProject converts a domain Project to a model Project
func ToModelProject(d domain.Project) models.Project {
	return models.Project{
		ProjectID:   d.ProjectID,
		CompanyID:   d.CompanyID,
		CustomerID:  d.CustomerID,
		Name:        d.Name,
		Code:        d.Code,
		HourlyRate:  d.HourlyRate,
		BillingType: string(d.BillingType),
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainProject converts a model Project to a domain Project
func ToDomainProject(m models.Project) domain.Project {
	return domain.Project{
		ProjectID:   m.ProjectID,
		CompanyID:   m.CompanyID,
		CustomerID:  m.CustomerID,
		Name:        m.Name,
		Code:        m.Code,
		HourlyRate:  m.HourlyRate,
		BillingType: domain.BillingType(m.BillingType),
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainProjectSlice converts a slice of model Projects to a slice of domain Projects
func ToDomainProjectSlice(ms []models.Project) []domain.Project {
	ds := make([]domain.Project, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainProject(m)
	}
	return ds
}
