package pgsql

import (
	"context"
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

type PgxTimeEntryRepository struct {
	BaseRepository
}

func newPgxTimeEntryRepository(pool *pgxpool.Pool) portsrepo.TimeEntryRepositoryFacade {
	return &PgxTimeEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTimeEntryRepository implements portsrepo.TimeEntryRepositoryFacade
var _ portsrepo.TimeEntryRepositoryFacade = (*PgxTimeEntryRepository)(nil)

const timeEntryColumns = `time_entry_id, company_id, project_id, user_id, entry_date, hours, hourly_rate, description, is_billable, status, document_id, created_at, created_by, last_updated_at, last_updated_by`

// unbilledTimeEntryQuery joins projects and customers so listings can show
// names and resolve the effective rate without extra round trips.
const unbilledTimeEntryQuery = `
	SELECT te.time_entry_id, te.company_id, te.project_id, te.user_id, te.entry_date, te.hours, te.hourly_rate,
	       te.description, te.is_billable, te.status, te.document_id,
	       te.created_at, te.created_by, te.last_updated_at, te.last_updated_by,
	       p.name, c.name, p.hourly_rate
	FROM time_entries te
	JOIN projects p ON p.project_id = te.project_id
	JOIN customers c ON c.customer_id = p.customer_id
	WHERE te.company_id = $1 AND te.status = 'APPROVED' AND te.is_billable = TRUE AND te.document_id IS NULL
`

func scanTimeEntry(row pgx.Row) (*models.TimeEntry, error) {
	var m models.TimeEntry
	err := row.Scan(
		&m.TimeEntryID,
		&m.CompanyID,
		&m.ProjectID,
		&m.UserID,
		&m.EntryDate,
		&m.Hours,
		&m.HourlyRate,
		&m.Description,
		&m.IsBillable,
		&m.Status,
		&m.DocumentID,
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

func scanJoinedTimeEntry(row pgx.Row) (*models.TimeEntry, error) {
	var m models.TimeEntry
	err := row.Scan(
		&m.TimeEntryID,
		&m.CompanyID,
		&m.ProjectID,
		&m.UserID,
		&m.EntryDate,
		&m.Hours,
		&m.HourlyRate,
		&m.Description,
		&m.IsBillable,
		&m.Status,
		&m.DocumentID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.ProjectName,
		&m.CustomerName,
		&m.ProjectHourlyRate,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxTimeEntryRepository) SaveTimeEntry(ctx context.Context, entry domain.TimeEntry) error {
	m := mapping.ToModelTimeEntry(entry)
	query := `
		INSERT INTO time_entries (` + timeEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.TimeEntryID,
		m.CompanyID,
		m.ProjectID,
		m.UserID,
		m.EntryDate,
		m.Hours,
		m.HourlyRate,
		m.Description,
		m.IsBillable,
		m.Status,
		m.DocumentID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save time entry: %w", err)
	}
	return nil
}

func (r *PgxTimeEntryRepository) FindTimeEntryByID(ctx context.Context, companyID, timeEntryID string) (*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE company_id = $1 AND time_entry_id = $2;`
	m, err := scanTimeEntry(r.Pool.QueryRow(ctx, query, companyID, timeEntryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find time entry by ID %s: %w", timeEntryID, err)
	}
	d := mapping.ToDomainTimeEntry(*m)
	return &d, nil
}

func (r *PgxTimeEntryRepository) FindTimeEntriesByIDs(ctx context.Context, companyID string, timeEntryIDs []string) ([]domain.TimeEntry, error) {
	if len(timeEntryIDs) == 0 {
		return []domain.TimeEntry{}, nil
	}
	query := `
		SELECT te.time_entry_id, te.company_id, te.project_id, te.user_id, te.entry_date, te.hours, te.hourly_rate,
		       te.description, te.is_billable, te.status, te.document_id,
		       te.created_at, te.created_by, te.last_updated_at, te.last_updated_by,
		       p.name, c.name, p.hourly_rate
		FROM time_entries te
		JOIN projects p ON p.project_id = te.project_id
		JOIN customers c ON c.customer_id = p.customer_id
		WHERE te.company_id = $1 AND te.time_entry_id = ANY($2)
		ORDER BY te.entry_date, te.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, timeEntryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries by IDs: %w", err)
	}
	defer rows.Close()
	return collectJoinedTimeEntries(rows)
}

// ListTimeEntriesByProject retrieves a paginated list using token-based pagination.
// Ordering is entry_date DESC with created_at DESC as a stable tie-breaker.
func (r *PgxTimeEntryRepository) ListTimeEntriesByProject(ctx context.Context, companyID, projectID string, limit int, nextToken *string) ([]domain.TimeEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE company_id = $1 AND project_id = $2`
	orderByClause := `ORDER BY entry_date DESC, created_at DESC`

	args := []interface{}{companyID, projectID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (entry_date, created_at) < ($3, $4)`
		args = append(args, lastEntryDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query time entries for project %s: %w", projectID, err)
	}
	defer rows.Close()

	entries := []models.TimeEntry{}
	for rows.Next() {
		m, err := scanTimeEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan time entry row: %w", err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating time entry rows: %w", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return mapping.ToDomainTimeEntrySlice(entries), nextTokenVal, nil
}

func (r *PgxTimeEntryRepository) ListTimeEntriesByUser(ctx context.Context, companyID, userID string, from, to time.Time) ([]domain.TimeEntry, error) {
	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE company_id = $1 AND user_id = $2 AND entry_date BETWEEN $3 AND $4
		ORDER BY entry_date, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries for user %s: %w", userID, err)
	}
	defer rows.Close()

	entries := []models.TimeEntry{}
	for rows.Next() {
		m, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry row: %w", err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entry rows: %w", err)
	}
	return mapping.ToDomainTimeEntrySlice(entries), nil
}

func (r *PgxTimeEntryRepository) FindUnbilledTimeEntries(ctx context.Context, companyID string, customerID *string) ([]domain.TimeEntry, error) {
	query := unbilledTimeEntryQuery
	args := []interface{}{companyID}
	if customerID != nil {
		query += ` AND c.customer_id = $2`
		args = append(args, *customerID)
	}
	query += ` ORDER BY te.entry_date, te.created_at;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unbilled time entries for company %s: %w", companyID, err)
	}
	defer rows.Close()
	return collectJoinedTimeEntries(rows)
}

func (r *PgxTimeEntryRepository) FindUnbilledTimeEntriesInRange(ctx context.Context, companyID, projectID string, from, to time.Time) ([]domain.TimeEntry, error) {
	query := unbilledTimeEntryQuery + ` AND te.project_id = $2 AND te.entry_date BETWEEN $3 AND $4 ORDER BY te.entry_date, te.created_at;`
	rows, err := r.Pool.Query(ctx, query, companyID, projectID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query unbilled time entries for project %s: %w", projectID, err)
	}
	defer rows.Close()
	return collectJoinedTimeEntries(rows)
}

func collectJoinedTimeEntries(rows pgx.Rows) ([]domain.TimeEntry, error) {
	entries := []models.TimeEntry{}
	for rows.Next() {
		m, err := scanJoinedTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry row: %w", err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entry rows: %w", err)
	}
	return mapping.ToDomainTimeEntrySlice(entries), nil
}

func (r *PgxTimeEntryRepository) UpdateTimeEntry(ctx context.Context, entry domain.TimeEntry) error {
	m := mapping.ToModelTimeEntry(entry)
	query := `
		UPDATE time_entries
		SET entry_date = $3, hours = $4, hourly_rate = $5, description = $6, is_billable = $7, last_updated_at = $8, last_updated_by = $9
		WHERE company_id = $1 AND time_entry_id = $2 AND status = 'DRAFT';
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.CompanyID,
		m.TimeEntryID,
		m.EntryDate,
		m.Hours,
		m.HourlyRate,
		m.Description,
		m.IsBillable,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update time entry %s: %w", m.TimeEntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTimeEntryRepository) UpdateTimeEntryStatus(ctx context.Context, companyID, timeEntryID string, status domain.TimeEntryStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE time_entries
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE company_id = $1 AND time_entry_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, companyID, timeEntryID, status, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update status of time entry %s: %w", timeEntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTimeEntryRepository) DeleteTimeEntry(ctx context.Context, companyID, timeEntryID string) error {
	query := `DELETE FROM time_entries WHERE company_id = $1 AND time_entry_id = $2 AND status = 'DRAFT';`
	tag, err := r.Pool.Exec(ctx, query, companyID, timeEntryID)
	if err != nil {
		return fmt.Errorf("failed to delete time entry %s: %w", timeEntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
