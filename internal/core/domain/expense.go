package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus tracks an expense through its approval flow. EXPORTED is
// terminal and only ever set by the accounting export.
type ExpenseStatus string

const (
	ExpenseDraft     ExpenseStatus = "DRAFT"
	ExpenseSubmitted ExpenseStatus = "SUBMITTED"
	ExpenseApproved  ExpenseStatus = "APPROVED"
	ExpenseRejected  ExpenseStatus = "REJECTED"
	ExpenseExported  ExpenseStatus = "EXPORTED"
)

// ExpenseCategory is a free-form but conventionally small set of labels.
type ExpenseCategory string

const (
	ExpenseTravel    ExpenseCategory = "TRAVEL"
	ExpenseMaterials ExpenseCategory = "MATERIALS"
	ExpenseSoftware  ExpenseCategory = "SOFTWARE"
	ExpenseOther     ExpenseCategory = "OTHER"
)

// Expense records a cost incurred by an employee, optionally against a
// project. Amount is gross; TaxAmount is the tax portion already contained in
// it, fixed at capture time and never recomputed at invoicing.
type Expense struct {
	ExpenseID   string           `json:"expenseID"` // Primary Key (UUID)
	CompanyID   string           `json:"companyID"` // FK -> companies
	ProjectID   *string          `json:"projectID,omitempty"`
	UserID      string           `json:"userID"`
	ExpenseDate time.Time        `json:"expenseDate"`
	Amount      decimal.Decimal  `json:"amount"`
	TaxRate     TaxRate          `json:"taxRate"`
	TaxAmount   decimal.Decimal  `json:"taxAmount"`
	Category    ExpenseCategory  `json:"category"`
	Description string           `json:"description"`
	// IsReimbursable marks the expense as billable to the customer.
	IsReimbursable bool          `json:"isReimbursable"`
	Status         ExpenseStatus `json:"status"`
	// ExportID links the expense to the accounting export that consumed it.
	ExportID *string `json:"exportID,omitempty"`
	AuditFields

	// Denormalized for unbilled listings.
	ProjectName  string `json:"projectName,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
}

// CanTransitionTo mirrors the time entry approval state machine.
func (s ExpenseStatus) CanTransitionTo(target ExpenseStatus) bool {
	switch s {
	case ExpenseDraft:
		return target == ExpenseSubmitted
	case ExpenseSubmitted:
		return target == ExpenseApproved || target == ExpenseRejected
	case ExpenseRejected:
		return target == ExpenseSubmitted
	case ExpenseApproved:
		return target == ExpenseExported
	case ExpenseExported:
		return false
	}
	return false
}
