package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	"github.com/ostwerk/billable_app/internal/models"
	"github.com/ostwerk/billable_app/internal/utils/mapping"
	"github.com/ostwerk/billable_app/internal/utils/pagination"
)

type PgxProjectRepository struct {
	BaseRepository
}

func newPgxProjectRepository(pool *pgxpool.Pool) portsrepo.ProjectRepositoryFacade {
	return &PgxProjectRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxProjectRepository implements portsrepo.ProjectRepositoryFacade
var _ portsrepo.ProjectRepositoryFacade = (*PgxProjectRepository)(nil)

const projectColumns = `project_id, company_id, customer_id, name, code, hourly_rate, billing_type, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanProject(row pgx.Row) (*models.Project, error) {
	var m models.Project
	err := row.Scan(
		&m.ProjectID,
		&m.CompanyID,
		&m.CustomerID,
		&m.Name,
		&m.Code,
		&m.HourlyRate,
		&m.BillingType,
		&m.IsActive,
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

func (r *PgxProjectRepository) SaveProject(ctx context.Context, project domain.Project) error {
	m := mapping.ToModelProject(project)
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ProjectID,
		m.CompanyID,
		m.CustomerID,
		m.Name,
		m.Code,
		m.HourlyRate,
		m.BillingType,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

func (r *PgxProjectRepository) FindProjectByID(ctx context.Context, companyID, projectID string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE company_id = $1 AND project_id = $2;`
	m, err := scanProject(r.Pool.QueryRow(ctx, query, companyID, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project by ID %s: %w", projectID, err)
	}
	d := mapping.ToDomainProject(*m)
	return &d, nil
}

// ListProjectsByCompany retrieves a paginated list of projects using token-based pagination.
func (r *PgxProjectRepository) ListProjectsByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Project, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + projectColumns + ` FROM projects WHERE company_id = $1 AND is_active = TRUE`
	orderByClause := `ORDER BY created_at DESC`

	args := []interface{}{companyID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		_, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND created_at < $2`
		args = append(args, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query projects for company %s: %w", companyID, err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		m, err := scanProject(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	var nextTokenVal *string
	if len(projects) > limit {
		last := projects[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.CreatedAt)
		nextTokenVal = &token
		projects = projects[:limit]
	}
	return mapping.ToDomainProjectSlice(projects), nextTokenVal, nil
}

func (r *PgxProjectRepository) ListProjectsByCustomer(ctx context.Context, companyID, customerID string) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE company_id = $1 AND customer_id = $2 AND is_active = TRUE ORDER BY created_at;`
	rows, err := r.Pool.Query(ctx, query, companyID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		m, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return mapping.ToDomainProjectSlice(projects), nil
}

func (r *PgxProjectRepository) UpdateProject(ctx context.Context, project domain.Project) error {
	m := mapping.ToModelProject(project)
	query := `
		UPDATE projects
		SET name = $3, code = $4, hourly_rate = $5, billing_type = $6, last_updated_at = $7, last_updated_by = $8
		WHERE company_id = $1 AND project_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.CompanyID,
		m.ProjectID,
		m.Name,
		m.Code,
		m.HourlyRate,
		m.BillingType,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update project %s: %w", m.ProjectID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxProjectRepository) DeactivateProject(ctx context.Context, companyID, projectID string, updatedBy string) error {
	query := `
		UPDATE projects
		SET is_active = FALSE, last_updated_at = NOW(), last_updated_by = $3
		WHERE company_id = $1 AND project_id = $2 AND is_active = TRUE;
	`
	tag, err := r.Pool.Exec(ctx, query, companyID, projectID, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to deactivate project %s: %w", projectID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
