package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves a specific expense within a company.
	FindExpenseByID(ctx context.Context, companyID, expenseID string) (*domain.Expense, error)

	// FindExpensesByIDs retrieves the given expenses, company scoped.
	FindExpensesByIDs(ctx context.Context, companyID string, expenseIDs []string) ([]domain.Expense, error)

	// ListExpensesByCompany retrieves a paginated list of expenses using token-based pagination.
	ListExpensesByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Expense, *string, error)

	// FindUnbilledExpenses retrieves approved, reimbursable, not yet exported
	// expenses, optionally restricted to a customer via the expense's project.
	FindUnbilledExpenses(ctx context.Context, companyID string, customerID *string) ([]domain.Expense, error)

	// FindUnbilledExpensesInRange retrieves unbilled expenses of a project
	// whose expense date falls within [from, to].
	FindUnbilledExpensesInRange(ctx context.Context, companyID, projectID string, from, to time.Time) ([]domain.Expense, error)

	// FindApprovedExpenseTotalInRange sums approved expense amounts in a date
	// range, used by the cash-flow forecast.
	FindApprovedExpenseTotalInRange(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists a new expense.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// UpdateExpense updates the editable fields of a draft expense.
	UpdateExpense(ctx context.Context, expense domain.Expense) error

	// UpdateExpenseStatus moves an expense through the approval flow.
	UpdateExpenseStatus(ctx context.Context, companyID, expenseID string, status domain.ExpenseStatus, updatedBy string, updatedAt time.Time) error

	// DeleteExpense removes an expense.
	DeleteExpense(ctx context.Context, companyID, expenseID string) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
// This is a facade for clients that need access to all operations
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
