package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	"github.com/ostwerk/billable_app/internal/models"
	"github.com/ostwerk/billable_app/internal/utils/mapping"
	"github.com/ostwerk/billable_app/internal/utils/pagination"
)

type PgxExpenseRepository struct {
	BaseRepository
}

func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

const expenseColumns = `expense_id, company_id, project_id, user_id, expense_date, amount, tax_rate, tax_amount, category, description, is_reimbursable, status, export_id, created_at, created_by, last_updated_at, last_updated_by`

// unbilledExpenseQuery left-joins projects and customers because an expense
// may exist without a project.
const unbilledExpenseQuery = `
	SELECT e.expense_id, e.company_id, e.project_id, e.user_id, e.expense_date, e.amount, e.tax_rate, e.tax_amount,
	       e.category, e.description, e.is_reimbursable, e.status, e.export_id,
	       e.created_at, e.created_by, e.last_updated_at, e.last_updated_by,
	       COALESCE(p.name, ''), COALESCE(c.name, '')
	FROM expenses e
	LEFT JOIN projects p ON p.project_id = e.project_id
	LEFT JOIN customers c ON c.customer_id = p.customer_id
	WHERE e.company_id = $1 AND e.status = 'APPROVED' AND e.is_reimbursable = TRUE AND e.export_id IS NULL
`

func scanExpense(row pgx.Row) (*models.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID,
		&m.CompanyID,
		&m.ProjectID,
		&m.UserID,
		&m.ExpenseDate,
		&m.Amount,
		&m.TaxRate,
		&m.TaxAmount,
		&m.Category,
		&m.Description,
		&m.IsReimbursable,
		&m.Status,
		&m.ExportID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanJoinedExpense(row pgx.Row) (*models.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID,
		&m.CompanyID,
		&m.ProjectID,
		&m.UserID,
		&m.ExpenseDate,
		&m.Amount,
		&m.TaxRate,
		&m.TaxAmount,
		&m.Category,
		&m.Description,
		&m.IsReimbursable,
		&m.Status,
		&m.ExportID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.ProjectName,
		&m.CustomerName,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ExpenseID,
		m.CompanyID,
		m.ProjectID,
		m.UserID,
		m.ExpenseDate,
		m.Amount,
		m.TaxRate,
		m.TaxAmount,
		m.Category,
		m.Description,
		m.IsReimbursable,
		m.Status,
		m.ExportID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, companyID, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE company_id = $1 AND expense_id = $2;`
	m, err := scanExpense(r.Pool.QueryRow(ctx, query, companyID, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense by ID %s: %w", expenseID, err)
	}
	d := mapping.ToDomainExpense(*m)
	return &d, nil
}

func (r *PgxExpenseRepository) FindExpensesByIDs(ctx context.Context, companyID string, expenseIDs []string) ([]domain.Expense, error) {
	if len(expenseIDs) == 0 {
		return []domain.Expense{}, nil
	}
	query := `
		SELECT e.expense_id, e.company_id, e.project_id, e.user_id, e.expense_date, e.amount, e.tax_rate, e.tax_amount,
		       e.category, e.description, e.is_reimbursable, e.status, e.export_id,
		       e.created_at, e.created_by, e.last_updated_at, e.last_updated_by,
		       COALESCE(p.name, ''), COALESCE(c.name, '')
		FROM expenses e
		LEFT JOIN projects p ON p.project_id = e.project_id
		LEFT JOIN customers c ON c.customer_id = p.customer_id
		WHERE e.company_id = $1 AND e.expense_id = ANY($2)
		ORDER BY e.expense_date, e.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, expenseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses by IDs: %w", err)
	}
	defer rows.Close()
	return collectJoinedExpenses(rows)
}

// ListExpensesByCompany retrieves a paginated list using token-based pagination.
// Ordering is expense_date DESC with created_at DESC as a stable tie-breaker.
func (r *PgxExpenseRepository) ListExpensesByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + expenseColumns + ` FROM expenses WHERE company_id = $1`
	orderByClause := `ORDER BY expense_date DESC, created_at DESC`

	args := []interface{}{companyID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastExpenseDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (expense_date, created_at) < ($2, $3)`
		args = append(args, lastExpenseDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query expenses for company %s: %w", companyID, err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating expense rows: %w", err)
	}

	var nextTokenVal *string
	if len(expenses) > limit {
		last := expenses[limit-1]
		token := pagination.EncodeToken(last.ExpenseDate, last.CreatedAt)
		nextTokenVal = &token
		expenses = expenses[:limit]
	}
	return mapping.ToDomainExpenseSlice(expenses), nextTokenVal, nil
}

func (r *PgxExpenseRepository) FindUnbilledExpenses(ctx context.Context, companyID string, customerID *string) ([]domain.Expense, error) {
	query := unbilledExpenseQuery
	args := []interface{}{companyID}
	if customerID != nil {
		query += ` AND c.customer_id = $2`
		args = append(args, *customerID)
	}
	query += ` ORDER BY e.expense_date, e.created_at;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unbilled expenses for company %s: %w", companyID, err)
	}
	defer rows.Close()
	return collectJoinedExpenses(rows)
}

func (r *PgxExpenseRepository) FindUnbilledExpensesInRange(ctx context.Context, companyID, projectID string, from, to time.Time) ([]domain.Expense, error) {
	query := unbilledExpenseQuery + ` AND e.project_id = $2 AND e.expense_date BETWEEN $3 AND $4 ORDER BY e.expense_date, e.created_at;`
	rows, err := r.Pool.Query(ctx, query, companyID, projectID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query unbilled expenses for project %s: %w", projectID, err)
	}
	defer rows.Close()
	return collectJoinedExpenses(rows)
}

func (r *PgxExpenseRepository) FindApprovedExpenseTotalInRange(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE company_id = $1 AND status IN ('APPROVED', 'EXPORTED') AND expense_date BETWEEN $2 AND $3;
	`
	var total decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, companyID, from, to).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum approved expenses for company %s: %w", companyID, err)
	}
	return total, nil
}

func collectJoinedExpenses(rows pgx.Rows) ([]domain.Expense, error) {
	expenses := []models.Expense{}
	for rows.Next() {
		m, err := scanJoinedExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", err)
	}
	return mapping.ToDomainExpenseSlice(expenses), nil
}

func (r *PgxExpenseRepository) UpdateExpense(ctx context.Context, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	query := `
		UPDATE expenses
		SET project_id = $3, expense_date = $4, amount = $5, tax_rate = $6, tax_amount = $7, category = $8, description = $9, is_reimbursable = $10, last_updated_at = $11, last_updated_by = $12
		WHERE company_id = $1 AND expense_id = $2 AND status = 'DRAFT';
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.CompanyID,
		m.ExpenseID,
		m.ProjectID,
		m.ExpenseDate,
		m.Amount,
		m.TaxRate,
		m.TaxAmount,
		m.Category,
		m.Description,
		m.IsReimbursable,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense %s: %w", m.ExpenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxExpenseRepository) UpdateExpenseStatus(ctx context.Context, companyID, expenseID string, status domain.ExpenseStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE expenses
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE company_id = $1 AND expense_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, companyID, expenseID, status, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update status of expense %s: %w", expenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxExpenseRepository) DeleteExpense(ctx context.Context, companyID, expenseID string) error {
	query := `DELETE FROM expenses WHERE company_id = $1 AND expense_id = $2 AND status = 'DRAFT';`
	tag, err := r.Pool.Exec(ctx, query, companyID, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", expenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
