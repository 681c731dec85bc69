package mapping

import (
	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/ostwerk/billable_app/internal/models"
)

// ToModelDocument converts a domain Document to a model Document
func ToModelDocument(d domain.Document) models.Document {
	breakdown := make(map[string]decimal.Decimal, len(d.TaxBreakdown))
	for rate, amount := range d.TaxBreakdown {
		breakdown[string(rate)] = amount
	}
	return models.Document{
		DocumentID:       d.DocumentID,
		CompanyID:        d.CompanyID,
		CustomerID:       d.CustomerID,
		ProjectID:        d.ProjectID,
		DocumentNumber:   d.DocumentNumber,
		DocumentType:     string(d.DocumentType),
		Status:           string(d.Status),
		IssueDate:        d.IssueDate,
		DueDate:          d.DueDate,
		Subtotal:         d.Subtotal,
		TaxAmount:        d.TaxAmount,
		Total:            d.Total,
		TaxBreakdown:     breakdown,
		CurrencyCode:     d.CurrencyCode,
		PaymentTermsDays: d.PaymentTermsDays,
		Notes:            d.Notes,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDocument converts a model Document to a domain Document
func ToDomainDocument(m models.Document) domain.Document {
	breakdown := make(map[domain.TaxRate]decimal.Decimal, len(m.TaxBreakdown))
	for rate, amount := range m.TaxBreakdown {
		breakdown[domain.TaxRate(rate)] = amount
	}
	return domain.Document{
		DocumentID:       m.DocumentID,
		CompanyID:        m.CompanyID,
		CustomerID:       m.CustomerID,
		ProjectID:        m.ProjectID,
		DocumentNumber:   m.DocumentNumber,
		DocumentType:     domain.DocumentType(m.DocumentType),
		Status:           domain.DocumentStatus(m.Status),
		IssueDate:        m.IssueDate,
		DueDate:          m.DueDate,
		Subtotal:         m.Subtotal,
		TaxAmount:        m.TaxAmount,
		Total:            m.Total,
		TaxBreakdown:     breakdown,
		CurrencyCode:     m.CurrencyCode,
		PaymentTermsDays: m.PaymentTermsDays,
		Notes:            m.Notes,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainDocumentSlice converts a slice of model Documents to a slice of domain Documents
func ToDomainDocumentSlice(ms []models.Document) []domain.Document {
	ds := make([]domain.Document, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainDocument(m)
	}
	return ds
}

// ToModelDocumentLine converts a domain DocumentLine to a model DocumentLine
func ToModelDocumentLine(d domain.DocumentLine) models.DocumentLine {
	return models.DocumentLine{
		LineID:       d.LineID,
		DocumentID:   d.DocumentID,
		LineNumber:   d.LineNumber,
		Description:  d.Description,
		Quantity:     d.Quantity,
		Unit:         d.Unit,
		UnitPrice:    d.UnitPrice,
		TaxRate:      string(d.TaxRate),
		Subtotal:     d.Subtotal,
		TaxAmount:    d.TaxAmount,
		Total:        d.Total,
		TimeEntryIDs: d.TimeEntryIDs,
		ExpenseIDs:   d.ExpenseIDs,
		ProjectID:    d.ProjectID,
	}
}

// ToDomainDocumentLine converts a model DocumentLine to a domain DocumentLine
func ToDomainDocumentLine(m models.DocumentLine) domain.DocumentLine {
	return domain.DocumentLine{
		LineID:       m.LineID,
		DocumentID:   m.DocumentID,
		LineNumber:   m.LineNumber,
		Description:  m.Description,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		UnitPrice:    m.UnitPrice,
		TaxRate:      domain.TaxRate(m.TaxRate),
		Subtotal:     m.Subtotal,
		TaxAmount:    m.TaxAmount,
		Total:        m.Total,
		TimeEntryIDs: m.TimeEntryIDs,
		ExpenseIDs:   m.ExpenseIDs,
		ProjectID:    m.ProjectID,
	}
}

// ToDomainDocumentLineSlice converts a slice of model DocumentLines to a slice of domain DocumentLines
func ToDomainDocumentLineSlice(ms []models.DocumentLine) []domain.DocumentLine {
	ds := make([]domain.DocumentLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainDocumentLine(m)
	}
	return ds
}

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:   d.PaymentID,
		CompanyID:   d.CompanyID,
		DocumentID:  d.DocumentID,
		PaidAt:      d.PaidAt,
		Amount:      d.Amount,
		Reference:   d.Reference,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:   m.PaymentID,
		CompanyID:   m.CompanyID,
		DocumentID:  m.DocumentID,
		PaidAt:      m.PaidAt,
		Amount:      m.Amount,
		Reference:   m.Reference,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPaymentSlice converts a slice of model Payments to a slice of domain Payments
func ToDomainPaymentSlice(ms []models.Payment) []domain.Payment {
	ds := make([]domain.Payment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPayment(m)
	}
	return ds
}
