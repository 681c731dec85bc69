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

type PgxCompanyRepository struct {
	BaseRepository
}

func newPgxCompanyRepository(pool *pgxpool.Pool) portsrepo.CompanyRepositoryFacade {
	return &PgxCompanyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCompanyRepository implements portsrepo.CompanyRepositoryFacade
var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

const companyColumns = `company_id, name, legal_name, address, vat_number, default_currency_code, invoice_number_prefix, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var c domain.Company
	err := row.Scan(
		&c.CompanyID,
		&c.Name,
		&c.LegalName,
		&c.Address,
		&c.VATNumber,
		&c.DefaultCurrencyCode,
		&c.InvoiceNumberPrefix,
		&c.IsActive,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	query := `
		INSERT INTO companies (company_id, name, legal_name, address, vat_number, default_currency_code, invoice_number_prefix, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		company.CompanyID,
		company.Name,
		company.LegalName,
		company.Address,
		company.VATNumber,
		company.DefaultCurrencyCode,
		company.InvoiceNumberPrefix,
		company.IsActive,
		company.CreatedAt,
		company.CreatedBy,
		company.LastUpdatedAt,
		company.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save company: %w", err)
	}
	return nil
}

func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE company_id = $1;`
	company, err := scanCompany(r.Pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find company by ID %s: %w", companyID, err)
	}
	return company, nil
}

func (r *PgxCompanyRepository) ListCompaniesByUserID(ctx context.Context, userID string) ([]domain.Company, error) {
	query := `
		SELECT ` + companyColumnsPrefixed("c") + `
		FROM companies c
		JOIN company_members cm ON cm.company_id = c.company_id
		WHERE cm.user_id = $1 AND cm.role != 'REMOVED'
		ORDER BY c.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies for user %s: %w", userID, err)
	}
	defer rows.Close()

	companies := []domain.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company row: %w", err)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating company rows: %w", err)
	}
	return companies, nil
}

func (r *PgxCompanyRepository) UpdateCompany(ctx context.Context, company domain.Company) error {
	query := `
		UPDATE companies
		SET name = $2, legal_name = $3, address = $4, vat_number = $5, invoice_number_prefix = $6, last_updated_at = $7, last_updated_by = $8
		WHERE company_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		company.CompanyID,
		company.Name,
		company.LegalName,
		company.Address,
		company.VATNumber,
		company.InvoiceNumberPrefix,
		company.LastUpdatedAt,
		company.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update company %s: %w", company.CompanyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxCompanyRepository) AddUserToCompany(ctx context.Context, membership domain.CompanyMember) error {
	query := `
		INSERT INTO company_members (user_id, company_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, company_id) DO UPDATE SET role = EXCLUDED.role;
	`
	_, err := r.Pool.Exec(ctx, query,
		membership.UserID,
		membership.CompanyID,
		membership.Role,
		membership.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add user %s to company %s: %w", membership.UserID, membership.CompanyID, err)
	}
	return nil
}

func (r *PgxCompanyRepository) FindUserCompanyRole(ctx context.Context, userID, companyID string) (*domain.CompanyMember, error) {
	query := `
		SELECT cm.user_id, u.name, cm.company_id, cm.role, cm.joined_at
		FROM company_members cm
		JOIN users u ON u.user_id = cm.user_id
		WHERE cm.user_id = $1 AND cm.company_id = $2;
	`
	var m domain.CompanyMember
	err := r.Pool.QueryRow(ctx, query, userID, companyID).Scan(
		&m.UserID,
		&m.UserName,
		&m.CompanyID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find role of user %s in company %s: %w", userID, companyID, err)
	}
	return &m, nil
}

func (r *PgxCompanyRepository) UpdateUserCompanyRole(ctx context.Context, userID, companyID string, role domain.CompanyRole, updatedBy string) error {
	query := `
		UPDATE company_members
		SET role = $3
		WHERE user_id = $1 AND company_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, userID, companyID, role)
	if err != nil {
		return fmt.Errorf("failed to update role of user %s in company %s: %w", userID, companyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxCompanyRepository) ListCompanyMembers(ctx context.Context, companyID string) ([]domain.CompanyMember, error) {
	query := `
		SELECT cm.user_id, u.name, cm.company_id, cm.role, cm.joined_at
		FROM company_members cm
		JOIN users u ON u.user_id = cm.user_id
		WHERE cm.company_id = $1 AND cm.role != 'REMOVED'
		ORDER BY cm.joined_at;
	`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members of company %s: %w", companyID, err)
	}
	defer rows.Close()

	members := []domain.CompanyMember{}
	for rows.Next() {
		var m domain.CompanyMember
		if err := rows.Scan(&m.UserID, &m.UserName, &m.CompanyID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company member row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating company member rows: %w", err)
	}
	return members, nil
}

// companyColumnsPrefixed qualifies the company column list with a table alias.
func companyColumnsPrefixed(alias string) string {
	return alias + ".company_id, " + alias + ".name, " + alias + ".legal_name, " + alias + ".address, " + alias + ".vat_number, " + alias + ".default_currency_code, " + alias + ".invoice_number_prefix, " + alias + ".is_active, " + alias + ".created_at, " + alias + ".created_by, " + alias + ".last_updated_at, " + alias + ".last_updated_by"
}
