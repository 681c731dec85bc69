package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
)

type reportingRepository struct {
	db *pgxpool.Pool
}

func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{db: db}
}

// Ensure reportingRepository implements portsrepo.ReportingRepository
var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

func (r *reportingRepository) GetRevenueByMonth(ctx context.Context, companyID string, from, to time.Time) ([]domain.RevenueMonth, error) {
	query := `
		SELECT EXTRACT(YEAR FROM issue_date)::int, EXTRACT(MONTH FROM issue_date)::int,
		       COALESCE(SUM(subtotal), 0), COALESCE(SUM(tax_amount), 0), COALESCE(SUM(total), 0), COUNT(*)::int
		FROM documents
		WHERE company_id = $1 AND status IN ('ISSUED', 'PAID') AND issue_date BETWEEN $2 AND $3
		GROUP BY 1, 2
		ORDER BY 1, 2;
	`
	rows, err := r.db.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue by month for company %s: %w", companyID, err)
	}
	defer rows.Close()

	result := []domain.RevenueMonth{}
	for rows.Next() {
		var m domain.RevenueMonth
		if err := rows.Scan(&m.Year, &m.Month, &m.Subtotal, &m.TaxAmount, &m.Total, &m.DocumentCount); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revenue rows: %w", err)
	}
	return result, nil
}

func (r *reportingRepository) GetOpenDocumentDues(ctx context.Context, companyID string) ([]domain.OpenDocumentDue, error) {
	query := `
		SELECT document_id, due_date, total
		FROM documents
		WHERE company_id = $1 AND status = 'ISSUED' AND due_date IS NOT NULL
		ORDER BY due_date;
	`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query open documents for company %s: %w", companyID, err)
	}
	defer rows.Close()

	result := []domain.OpenDocumentDue{}
	for rows.Next() {
		var d domain.OpenDocumentDue
		if err := rows.Scan(&d.DocumentID, &d.DueDate, &d.Total); err != nil {
			return nil, fmt.Errorf("failed to scan open document row: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating open document rows: %w", err)
	}
	return result, nil
}
