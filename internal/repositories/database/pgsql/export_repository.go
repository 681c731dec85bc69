package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
)

type PgxExportRepository struct {
	BaseRepository
}

func newPgxExportRepository(pool *pgxpool.Pool) portsrepo.ExportRepositoryFacade {
	return &PgxExportRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxExportRepository implements portsrepo.ExportRepositoryFacade
var _ portsrepo.ExportRepositoryFacade = (*PgxExportRepository)(nil)

const exportColumns = `export_id, company_id, year, month, document_ids, expense_ids, created_at, created_by, last_updated_at, last_updated_by`

func scanExport(row pgx.Row) (*domain.ExportBatch, error) {
	var b domain.ExportBatch
	err := row.Scan(
		&b.ExportID,
		&b.CompanyID,
		&b.Year,
		&b.Month,
		&b.DocumentIDs,
		&b.ExpenseIDs,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SaveExport persists the batch and stamps the consumed expenses within one
// transaction. The conditional update aborts with ErrConflict if any expense
// was exported concurrently, leaving no partial batch behind.
func (r *PgxExportRepository) SaveExport(ctx context.Context, batch domain.ExportBatch) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	insertQuery := `
		INSERT INTO export_batches (` + exportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, insertQuery,
		batch.ExportID,
		batch.CompanyID,
		batch.Year,
		batch.Month,
		batch.DocumentIDs,
		batch.ExpenseIDs,
		batch.CreatedAt,
		batch.CreatedBy,
		batch.LastUpdatedAt,
		batch.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert export batch "+batch.ExportID, err)
	}

	if len(batch.ExpenseIDs) > 0 {
		stampQuery := `
			UPDATE expenses
			SET export_id = $1, status = 'EXPORTED', last_updated_at = $2, last_updated_by = $3
			WHERE company_id = $4 AND expense_id = ANY($5) AND export_id IS NULL AND status = 'APPROVED';
		`
		tag, err := tx.Exec(ctx, stampQuery,
			batch.ExportID,
			batch.LastUpdatedAt,
			batch.LastUpdatedBy,
			batch.CompanyID,
			batch.ExpenseIDs,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to stamp expenses for export "+batch.ExportID, err)
		}
		if tag.RowsAffected() != int64(len(batch.ExpenseIDs)) {
			return apperrors.ErrConflict
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit export batch "+batch.ExportID, err)
	}
	return nil
}

func (r *PgxExportRepository) FindExportByID(ctx context.Context, companyID, exportID string) (*domain.ExportBatch, error) {
	query := `SELECT ` + exportColumns + ` FROM export_batches WHERE company_id = $1 AND export_id = $2;`
	batch, err := scanExport(r.Pool.QueryRow(ctx, query, companyID, exportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find export by ID %s: %w", exportID, err)
	}
	return batch, nil
}

func (r *PgxExportRepository) ListExportsByCompany(ctx context.Context, companyID string) ([]domain.ExportBatch, error) {
	query := `SELECT ` + exportColumns + ` FROM export_batches WHERE company_id = $1 ORDER BY created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports for company %s: %w", companyID, err)
	}
	defer rows.Close()

	batches := []domain.ExportBatch{}
	for rows.Next() {
		b, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		batches = append(batches, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export rows: %w", err)
	}
	return batches, nil
}
