package mapping

import (
	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/ostwerk/billable_app/internal/models"
)

// ToModelCustomer converts a domain Customer to a model Customer
func ToModelCustomer(d domain.Customer) models.Customer {
	return models.Customer{
		CustomerID:       d.CustomerID,
		CompanyID:        d.CompanyID,
		Name:             d.Name,
		Email:            d.Email,
		Address:          d.Address,
		VATNumber:        d.VATNumber,
		DefaultTaxRate:   string(d.DefaultTaxRate),
		TaxExempt:        d.TaxExempt,
		ReverseCharge:    d.ReverseCharge,
		PaymentTermsDays: d.PaymentTermsDays,
		CurrencyCode:     d.CurrencyCode,
		IsActive:         d.IsActive,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCustomer converts a model Customer to a domain Customer
func ToDomainCustomer(m models.Customer) domain.Customer {
	return domain.Customer{
		CustomerID:       m.CustomerID,
		CompanyID:        m.CompanyID,
		Name:             m.Name,
		Email:            m.Email,
		Address:          m.Address,
		VATNumber:        m.VATNumber,
		DefaultTaxRate:   domain.TaxRate(m.DefaultTaxRate),
		TaxExempt:        m.TaxExempt,
		ReverseCharge:    m.ReverseCharge,
		PaymentTermsDays: m.PaymentTermsDays,
		CurrencyCode:     m.CurrencyCode,
		IsActive:         m.IsActive,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCustomerSlice converts a slice of model Customers to a slice of domain Customers
func ToDomainCustomerSlice(ms []models.Customer) []domain.Customer {
	ds := make([]domain.Customer, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCustomer(m)
	}
	return ds
}
