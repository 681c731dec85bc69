package mapping

import (
	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/ostwerk/billable_app/internal/models"
)

// ToModelExpense converts a domain Expense to a model Expense
func ToModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:      d.ExpenseID,
		CompanyID:      d.CompanyID,
		ProjectID:      d.ProjectID,
		UserID:         d.UserID,
		ExpenseDate:    d.ExpenseDate,
		Amount:         d.Amount,
		TaxRate:        string(d.TaxRate),
		TaxAmount:      d.TaxAmount,
		Category:       string(d.Category),
		Description:    d.Description,
		IsReimbursable: d.IsReimbursable,
		Status:         string(d.Status),
		ExportID:       d.ExportID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExpense converts a model Expense to a domain Expense
func ToDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ExpenseID:      m.ExpenseID,
		CompanyID:      m.CompanyID,
		ProjectID:      m.ProjectID,
		UserID:         m.UserID,
		ExpenseDate:    m.ExpenseDate,
		Amount:         m.Amount,
		TaxRate:        domain.TaxRate(m.TaxRate),
		TaxAmount:      m.TaxAmount,
		Category:       domain.ExpenseCategory(m.Category),
		Description:    m.Description,
		IsReimbursable: m.IsReimbursable,
		Status:         domain.ExpenseStatus(m.Status),
		ExportID:       m.ExportID,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
		ProjectName:    m.ProjectName,
		CustomerName:   m.CustomerName,
	}
}

// ToDomainExpenseSlice converts a slice of model Expenses to a slice of domain Expenses
func ToDomainExpenseSlice(ms []models.Expense) []domain.Expense {
	ds := make([]domain.Expense, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainExpense(m)
	}
	return ds
}
