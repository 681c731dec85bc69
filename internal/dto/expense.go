package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// CreateExpenseRequest defines data for recording a new expense.
type CreateExpenseRequest struct {
	ProjectID      *string                `json:"projectID"`
	ExpenseDate    time.Time              `json:"expenseDate" binding:"required"`
	Amount         decimal.Decimal        `json:"amount" binding:"required"`
	TaxRate        domain.TaxRate         `json:"taxRate" binding:"omitempty,taxrate"`
	Category       domain.ExpenseCategory `json:"category" binding:"omitempty,oneof=TRAVEL MATERIALS SOFTWARE OTHER"`
	Description    string                 `json:"description"`
	IsReimbursable bool                   `json:"isReimbursable"`
}

// UpdateExpenseRequest defines the updatable fields of a draft expense.
type UpdateExpenseRequest struct {
	ProjectID      *string                 `json:"projectID"`
	ExpenseDate    *time.Time              `json:"expenseDate"`
	Amount         *decimal.Decimal        `json:"amount"`
	TaxRate        *domain.TaxRate         `json:"taxRate" binding:"omitempty,taxrate"`
	Category       *domain.ExpenseCategory `json:"category" binding:"omitempty,oneof=TRAVEL MATERIALS SOFTWARE OTHER"`
	Description    *string                 `json:"description"`
	IsReimbursable *bool                   `json:"isReimbursable"`
}

// ListExpensesParams defines query parameters for listing expenses.
type ListExpensesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ExpenseResponse defines data returned for an expense.
type ExpenseResponse struct {
	ExpenseID      string                 `json:"expenseID"`
	CompanyID      string                 `json:"companyID"`
	ProjectID      *string                `json:"projectID,omitempty"`
	ProjectName    string                 `json:"projectName,omitempty"`
	CustomerName   string                 `json:"customerName,omitempty"`
	UserID         string                 `json:"userID"`
	ExpenseDate    time.Time              `json:"expenseDate"`
	Amount         decimal.Decimal        `json:"amount"`
	TaxRate        domain.TaxRate         `json:"taxRate"`
	TaxAmount      decimal.Decimal        `json:"taxAmount"`
	Category       domain.ExpenseCategory `json:"category"`
	Description    string                 `json:"description"`
	IsReimbursable bool                   `json:"isReimbursable"`
	Status         domain.ExpenseStatus   `json:"status"`
	ExportID       *string                `json:"exportID,omitempty"`
}

// ToExpenseResponse converts domain.Expense to DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:      e.ExpenseID,
		CompanyID:      e.CompanyID,
		ProjectID:      e.ProjectID,
		ProjectName:    e.ProjectName,
		CustomerName:   e.CustomerName,
		UserID:         e.UserID,
		ExpenseDate:    e.ExpenseDate,
		Amount:         e.Amount,
		TaxRate:        e.TaxRate,
		TaxAmount:      e.TaxAmount,
		Category:       e.Category,
		Description:    e.Description,
		IsReimbursable: e.IsReimbursable,
		Status:         e.Status,
		ExportID:       e.ExportID,
	}
}

// ToExpenseResponses converts a slice of domain.Expense to DTOs.
func ToExpenseResponses(es []domain.Expense) []ExpenseResponse {
	list := make([]ExpenseResponse, len(es))
	for i, e := range es {
		list[i] = ToExpenseResponse(&e)
	}
	return list
}

// ListExpensesResponse wraps a paginated list of expenses.
type ListExpensesResponse struct {
	Expenses  []ExpenseResponse `json:"expenses"`
	NextToken *string           `json:"nextToken,omitempty"`
}
