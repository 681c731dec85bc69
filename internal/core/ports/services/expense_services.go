package services

import (
	"context"

	"github.com/ostwerk/billable_app/internal/core/domain"
	"github.com/ostwerk/billable_app/internal/dto"
)

// ExpenseReaderSvc defines read operations for expense data
type ExpenseReaderSvc interface {
	// GetExpenseByID retrieves a specific expense.
	GetExpenseByID(ctx context.Context, companyID, expenseID string, requestingUserID string) (*domain.Expense, error)

	// ListExpenses retrieves a paginated list of a company's expenses.
	ListExpenses(ctx context.Context, companyID string, userID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error)
}

// ExpenseWriterSvc defines write operations for expense data
type ExpenseWriterSvc interface {
	// CreateExpense records a new draft expense.
	CreateExpense(ctx context.Context, companyID string, req dto.CreateExpenseRequest, creatorUserID string) (*domain.Expense, error)

	// UpdateExpense updates a draft expense. Only the owner may edit it.
	UpdateExpense(ctx context.Context, companyID, expenseID string, req dto.UpdateExpenseRequest, requestingUserID string) (*domain.Expense, error)

	// DeleteExpense removes a draft expense.
	DeleteExpense(ctx context.Context, companyID, expenseID string, requestingUserID string) error
}

// ExpenseApprovalSvc defines operations that move expenses through the approval flow
type ExpenseApprovalSvc interface {
	// SubmitExpense moves a draft or rejected expense to SUBMITTED.
	SubmitExpense(ctx context.Context, companyID, expenseID string, requestingUserID string) (*domain.Expense, error)

	// ApproveExpense moves a submitted expense to APPROVED. Admin only.
	ApproveExpense(ctx context.Context, companyID, expenseID string, approverUserID string) (*domain.Expense, error)

	// RejectExpense moves a submitted expense to REJECTED. Admin only.
	RejectExpense(ctx context.Context, companyID, expenseID string, approverUserID string) (*domain.Expense, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
	ExpenseApprovalSvc
}
