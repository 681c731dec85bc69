package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	"github.com/ostwerk/billable_app/internal/models"
	"github.com/ostwerk/billable_app/internal/utils/mapping"
	"github.com/ostwerk/billable_app/internal/utils/pagination"
)

type PgxDocumentRepository struct {
	BaseRepository
}

// newPgxDocumentRepository creates a new repository for document, line and payment data.
func newPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryWithTx {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxDocumentRepository implements portsrepo.DocumentRepositoryWithTx
var _ portsrepo.DocumentRepositoryWithTx = (*PgxDocumentRepository)(nil)

const documentColumns = `document_id, company_id, customer_id, project_id, document_number, document_type, status, issue_date, due_date, subtotal, tax_amount, total, tax_breakdown, currency_code, payment_terms_days, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanDocument(row pgx.Row) (*models.Document, error) {
	var m models.Document
	var breakdownJSON []byte
	err := row.Scan(
		&m.DocumentID,
		&m.CompanyID,
		&m.CustomerID,
		&m.ProjectID,
		&m.DocumentNumber,
		&m.DocumentType,
		&m.Status,
		&m.IssueDate,
		&m.DueDate,
		&m.Subtotal,
		&m.TaxAmount,
		&m.Total,
		&breakdownJSON,
		&m.CurrencyCode,
		&m.PaymentTermsDays,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if len(breakdownJSON) > 0 {
		if err := json.Unmarshal(breakdownJSON, &m.TaxBreakdown); err != nil {
			return nil, fmt.Errorf("failed to decode tax breakdown for document %s: %w", m.DocumentID, err)
		}
	}
	return &m, nil
}

// SaveDocument persists a document and its lines and links the consumed time
// entries, all within a single DB transaction. The conditional update on the
// time entries is the guard against a concurrent invoice consuming the same
// entries: an affected-row mismatch aborts with ErrConflict and the rollback
// leaves no partial document behind.
func (r *PgxDocumentRepository) SaveDocument(ctx context.Context, document domain.Document, lines []domain.DocumentLine, timeEntryIDs []string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	modelDoc := mapping.ToModelDocument(document)
	breakdownJSON, err := json.Marshal(modelDoc.TaxBreakdown)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode tax breakdown for document "+modelDoc.DocumentID, err)
	}

	// 1. Insert the document
	docQuery := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err = tx.Exec(ctx, docQuery,
		modelDoc.DocumentID,
		modelDoc.CompanyID,
		modelDoc.CustomerID,
		modelDoc.ProjectID,
		modelDoc.DocumentNumber,
		modelDoc.DocumentType,
		modelDoc.Status,
		modelDoc.IssueDate,
		modelDoc.DueDate,
		modelDoc.Subtotal,
		modelDoc.TaxAmount,
		modelDoc.Total,
		breakdownJSON,
		modelDoc.CurrencyCode,
		modelDoc.PaymentTermsDays,
		modelDoc.Notes,
		modelDoc.CreatedAt,
		modelDoc.CreatedBy,
		modelDoc.LastUpdatedAt,
		modelDoc.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert document "+modelDoc.DocumentID, err)
	}

	// 2. Batch-insert the lines
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO document_lines (line_id, document_id, line_number, description, quantity, unit, unit_price, tax_rate, subtotal, tax_amount, total, time_entry_ids, expense_ids, project_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	for _, line := range lines {
		modelLine := mapping.ToModelDocumentLine(line)
		batch.Queue(lineQuery,
			modelLine.LineID,
			modelLine.DocumentID,
			modelLine.LineNumber,
			modelLine.Description,
			modelLine.Quantity,
			modelLine.Unit,
			modelLine.UnitPrice,
			modelLine.TaxRate,
			modelLine.Subtotal,
			modelLine.TaxAmount,
			modelLine.Total,
			modelLine.TimeEntryIDs,
			modelLine.ExpenseIDs,
			modelLine.ProjectID,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute line batch for document "+modelDoc.DocumentID, err)
	}

	// 3. Link the consumed time entries. The WHERE clause re-checks
	// eligibility so entries grabbed by a concurrent invoice are not linked
	// twice; any mismatch aborts the whole transaction.
	if len(timeEntryIDs) > 0 {
		linkQuery := `
			UPDATE time_entries
			SET document_id = $1, status = 'INVOICED', last_updated_at = $2, last_updated_by = $3
			WHERE company_id = $4 AND time_entry_id = ANY($5) AND document_id IS NULL AND status = 'APPROVED';
		`
		tag, err := tx.Exec(ctx, linkQuery,
			modelDoc.DocumentID,
			modelDoc.LastUpdatedAt,
			modelDoc.LastUpdatedBy,
			modelDoc.CompanyID,
			timeEntryIDs,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to link time entries to document "+modelDoc.DocumentID, err)
		}
		if tag.RowsAffected() != int64(len(timeEntryIDs)) {
			return apperrors.ErrConflict
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction for document "+modelDoc.DocumentID, err)
	}
	return nil
}

// IssueDocument assigns the next sequential number from the per-company
// counter row and moves the draft to ISSUED, all within one transaction. The
// counter row is locked with FOR UPDATE so concurrent issues cannot produce
// duplicate numbers.
func (r *PgxDocumentRepository) IssueDocument(ctx context.Context, companyID, documentID string, issueDate, dueDate time.Time, updatedBy string) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer r.Rollback(ctx, tx)

	var prefix string
	if err := tx.QueryRow(ctx, `SELECT invoice_number_prefix FROM companies WHERE company_id = $1;`, companyID).Scan(&prefix); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", apperrors.NewAppError(500, "failed to load company "+companyID, err)
	}

	year := issueDate.Year()
	counterQuery := `
		INSERT INTO document_counters (company_id, year, next_number)
		VALUES ($1, $2, 2)
		ON CONFLICT (company_id, year) DO UPDATE SET next_number = document_counters.next_number + 1
		RETURNING next_number - 1;
	`
	var seq int
	if err := tx.QueryRow(ctx, counterQuery, companyID, year).Scan(&seq); err != nil {
		return "", apperrors.NewAppError(500, "failed to advance document counter for company "+companyID, err)
	}
	number := fmt.Sprintf("%s%d-%04d", prefix, year, seq)

	updateQuery := `
		UPDATE documents
		SET document_number = $3, status = 'ISSUED', issue_date = $4, due_date = $5, last_updated_at = NOW(), last_updated_by = $6
		WHERE company_id = $1 AND document_id = $2 AND status = 'DRAFT';
	`
	tag, err := tx.Exec(ctx, updateQuery, companyID, documentID, number, issueDate, dueDate, updatedBy)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to issue document "+documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return "", apperrors.ErrConflict
	}

	if err := r.Commit(ctx, tx); err != nil {
		return "", apperrors.NewAppError(500, "failed to commit issue of document "+documentID, err)
	}
	return number, nil
}

// CancelDraftDocument releases the linked time entries back to APPROVED and
// cancels the draft within one transaction.
func (r *PgxDocumentRepository) CancelDraftDocument(ctx context.Context, companyID, documentID string, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	cancelQuery := `
		UPDATE documents
		SET status = 'CANCELLED', last_updated_at = $3, last_updated_by = $4
		WHERE company_id = $1 AND document_id = $2 AND status = 'DRAFT';
	`
	tag, err := tx.Exec(ctx, cancelQuery, companyID, documentID, updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to cancel document "+documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}

	releaseQuery := `
		UPDATE time_entries
		SET document_id = NULL, status = 'APPROVED', last_updated_at = $3, last_updated_by = $4
		WHERE company_id = $1 AND document_id = $2;
	`
	if _, err := tx.Exec(ctx, releaseQuery, companyID, documentID, updatedAt, updatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to release time entries of document "+documentID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit cancel of document "+documentID, err)
	}
	return nil
}

func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, companyID, documentID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE company_id = $1 AND document_id = $2;`
	m, err := scanDocument(r.Pool.QueryRow(ctx, query, companyID, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document by ID %s: %w", documentID, err)
	}
	d := mapping.ToDomainDocument(*m)
	return &d, nil
}

func (r *PgxDocumentRepository) FindDocumentLines(ctx context.Context, documentID string) ([]domain.DocumentLine, error) {
	query := `
		SELECT line_id, document_id, line_number, description, quantity, unit, unit_price, tax_rate, subtotal, tax_amount, total, time_entry_ids, expense_ids, project_id
		FROM document_lines
		WHERE document_id = $1
		ORDER BY line_number;
	`
	rows, err := r.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for document %s: %w", documentID, err)
	}
	defer rows.Close()

	lines := []models.DocumentLine{}
	for rows.Next() {
		var m models.DocumentLine
		err := rows.Scan(
			&m.LineID,
			&m.DocumentID,
			&m.LineNumber,
			&m.Description,
			&m.Quantity,
			&m.Unit,
			&m.UnitPrice,
			&m.TaxRate,
			&m.Subtotal,
			&m.TaxAmount,
			&m.Total,
			&m.TimeEntryIDs,
			&m.ExpenseIDs,
			&m.ProjectID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for document %s: %w", documentID, err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for document %s: %w", documentID, err)
	}
	return mapping.ToDomainDocumentLineSlice(lines), nil
}

// ListDocumentsByCompany retrieves a paginated list using token-based pagination.
func (r *PgxDocumentRepository) ListDocumentsByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Document, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + documentColumns + ` FROM documents WHERE company_id = $1`
	// document_id breaks created_at ties so rows sharing a timestamp are
	// never skipped across pages.
	orderByClause := `ORDER BY created_at DESC, document_id DESC`

	args := []interface{}{companyID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		fields, decodeErr := pagination.DecodeMultiFieldToken(*nextToken)
		if decodeErr != nil || len(fields) != 2 {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		lastCreatedAt, parseErr := time.Parse(time.RFC3339Nano, fields[0])
		if parseErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", parseErr)
		}
		query += ` AND (created_at, document_id) < ($2, $3)`
		args = append(args, lastCreatedAt, fields[1])
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query documents for company %s: %w", companyID, err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		m, err := scanDocument(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	var nextTokenVal *string
	if len(docs) > limit {
		last := docs[limit-1]
		token := pagination.EncodeMultiFieldToken(last.CreatedAt.Format(time.RFC3339Nano), last.DocumentID)
		nextTokenVal = &token
		docs = docs[:limit]
	}
	return mapping.ToDomainDocumentSlice(docs), nextTokenVal, nil
}

func (r *PgxDocumentRepository) FindDocumentsInPeriod(ctx context.Context, companyID string, from, to time.Time) ([]domain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE company_id = $1 AND status IN ('ISSUED', 'PAID') AND issue_date BETWEEN $2 AND $3
		ORDER BY issue_date, document_number;
	`
	return r.queryDocuments(ctx, query, companyID, from, to)
}

func (r *PgxDocumentRepository) FindOverdueDocuments(ctx context.Context, asOf time.Time) ([]domain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE status = 'ISSUED' AND due_date < $1
		ORDER BY company_id, due_date;
	`
	return r.queryDocuments(ctx, query, asOf)
}

func (r *PgxDocumentRepository) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]domain.Document, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		m, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return mapping.ToDomainDocumentSlice(docs), nil
}

func (r *PgxDocumentRepository) UpdateDocumentStatus(ctx context.Context, companyID, documentID string, status domain.DocumentStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE documents
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE company_id = $1 AND document_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, companyID, documentID, status, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update status of document %s: %w", documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxDocumentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)
	query := `
		INSERT INTO payments (payment_id, company_id, document_id, paid_at, amount, reference, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PaymentID,
		m.CompanyID,
		m.DocumentID,
		m.PaidAt,
		m.Amount,
		m.Reference,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (r *PgxDocumentRepository) FindPaymentsByDocument(ctx context.Context, companyID, documentID string) ([]domain.Payment, error) {
	query := `
		SELECT payment_id, company_id, document_id, paid_at, amount, reference, created_at, created_by, last_updated_at, last_updated_by
		FROM payments
		WHERE company_id = $1 AND document_id = $2
		ORDER BY paid_at;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for document %s: %w", documentID, err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var m models.Payment
		err := rows.Scan(
			&m.PaymentID,
			&m.CompanyID,
			&m.DocumentID,
			&m.PaidAt,
			&m.Amount,
			&m.Reference,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row for document %s: %w", documentID, err)
		}
		payments = append(payments, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows for document %s: %w", documentID, err)
	}
	return mapping.ToDomainPaymentSlice(payments), nil
}
