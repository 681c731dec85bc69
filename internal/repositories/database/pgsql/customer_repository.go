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

type PgxCustomerRepository struct {
	BaseRepository
}

func newPgxCustomerRepository(pool *pgxpool.Pool) portsrepo.CustomerRepositoryFacade {
	return &PgxCustomerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCustomerRepository implements portsrepo.CustomerRepositoryFacade
var _ portsrepo.CustomerRepositoryFacade = (*PgxCustomerRepository)(nil)

const customerColumns = `customer_id, company_id, name, email, address, vat_number, default_tax_rate, tax_exempt, reverse_charge, payment_terms_days, currency_code, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var m models.Customer
	err := row.Scan(
		&m.CustomerID,
		&m.CompanyID,
		&m.Name,
		&m.Email,
		&m.Address,
		&m.VATNumber,
		&m.DefaultTaxRate,
		&m.TaxExempt,
		&m.ReverseCharge,
		&m.PaymentTermsDays,
		&m.CurrencyCode,
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

func (r *PgxCustomerRepository) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	m := mapping.ToModelCustomer(customer)
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CustomerID,
		m.CompanyID,
		m.Name,
		m.Email,
		m.Address,
		m.VATNumber,
		m.DefaultTaxRate,
		m.TaxExempt,
		m.ReverseCharge,
		m.PaymentTermsDays,
		m.CurrencyCode,
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
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

func (r *PgxCustomerRepository) FindCustomerByID(ctx context.Context, companyID, customerID string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE company_id = $1 AND customer_id = $2;`
	m, err := scanCustomer(r.Pool.QueryRow(ctx, query, companyID, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID %s: %w", customerID, err)
	}
	d := mapping.ToDomainCustomer(*m)
	return &d, nil
}

// ListCustomersByCompany retrieves a paginated list of customers using token-based pagination.
func (r *PgxCustomerRepository) ListCustomersByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Customer, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + customerColumns + ` FROM customers WHERE company_id = $1 AND is_active = TRUE`
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
		return nil, nil, fmt.Errorf("failed to query customers for company %s: %w", companyID, err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		m, err := scanCustomer(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		customers = append(customers, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating customer rows: %w", err)
	}

	var nextTokenVal *string
	if len(customers) > limit {
		last := customers[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.CreatedAt)
		nextTokenVal = &token
		customers = customers[:limit]
	}
	return mapping.ToDomainCustomerSlice(customers), nextTokenVal, nil
}

func (r *PgxCustomerRepository) UpdateCustomer(ctx context.Context, customer domain.Customer) error {
	m := mapping.ToModelCustomer(customer)
	query := `
		UPDATE customers
		SET name = $3, email = $4, address = $5, vat_number = $6, default_tax_rate = $7, tax_exempt = $8, reverse_charge = $9, payment_terms_days = $10, last_updated_at = $11, last_updated_by = $12
		WHERE company_id = $1 AND customer_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.CompanyID,
		m.CustomerID,
		m.Name,
		m.Email,
		m.Address,
		m.VATNumber,
		m.DefaultTaxRate,
		m.TaxExempt,
		m.ReverseCharge,
		m.PaymentTermsDays,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer %s: %w", m.CustomerID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxCustomerRepository) DeactivateCustomer(ctx context.Context, companyID, customerID string, updatedBy string) error {
	query := `
		UPDATE customers
		SET is_active = FALSE, last_updated_at = NOW(), last_updated_by = $3
		WHERE company_id = $1 AND customer_id = $2 AND is_active = TRUE;
	`
	tag, err := r.Pool.Exec(ctx, query, companyID, customerID, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to deactivate customer %s: %w", customerID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
