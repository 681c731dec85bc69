package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
)

type PgxIntegrationTokenRepository struct {
	BaseRepository
}

// newPgxIntegrationTokenRepository creates a new instance of PgxIntegrationTokenRepository
func newPgxIntegrationTokenRepository(db *pgxpool.Pool) portsrepo.IntegrationTokenRepository {
	return &PgxIntegrationTokenRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// Ensure PgxIntegrationTokenRepository implements portsrepo.IntegrationTokenRepository
var _ portsrepo.IntegrationTokenRepository = (*PgxIntegrationTokenRepository)(nil)

const (
	integrationTokensTable = "integration_tokens"

	selectIntegrationTokenFields = `
		integration_token_id, user_id, name, token_hash,
		last_used_at, expires_at, created_at, updated_at
	`

	insertIntegrationTokenQuery = `
		INSERT INTO ` + integrationTokensTable + ` (
			user_id, name, token_hash, expires_at
		) VALUES ($1, $2, $3, $4)
		RETURNING ` + selectIntegrationTokenFields

	findIntegrationTokenByIDQuery = `
		SELECT ` + selectIntegrationTokenFields + `
		FROM ` + integrationTokensTable + `
		WHERE integration_token_id = $1 AND deleted_at IS NULL
	`

	findIntegrationTokensByUserIDQuery = `
		SELECT ` + selectIntegrationTokenFields + `
		FROM ` + integrationTokensTable + `
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	findIntegrationTokenByHashQuery = `
		SELECT ` + selectIntegrationTokenFields + `
		FROM ` + integrationTokensTable + `
		WHERE token_hash = $1 AND deleted_at IS NULL
	`

	updateIntegrationTokenQuery = `
		UPDATE ` + integrationTokensTable + `
		SET
			last_used_at = COALESCE($2, last_used_at),
			updated_at = NOW()
		WHERE integration_token_id = $1
		RETURNING ` + selectIntegrationTokenFields

	deleteIntegrationTokenQuery = `
		UPDATE ` + integrationTokensTable + `
		SET deleted_at = NOW()
		WHERE integration_token_id = $1
	`

	deleteExpiredIntegrationTokensQuery = `
		UPDATE ` + integrationTokensTable + `
		SET deleted_at = NOW()
		WHERE expires_at < $1 AND deleted_at IS NULL
	`
)

func scanIntegrationToken(row pgx.Row) (*domain.IntegrationToken, error) {
	var t domain.IntegrationToken
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Name,
		&t.TokenHash,
		&t.LastUsedAt,
		&t.ExpiresAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persists a new integration token
func (r *PgxIntegrationTokenRepository) Create(ctx context.Context, token *domain.IntegrationToken) error {
	if token == nil {
		return errors.New("token cannot be nil")
	}

	created, err := scanIntegrationToken(r.Pool.QueryRow(
		ctx,
		insertIntegrationTokenQuery,
		token.UserID,
		token.Name,
		token.TokenHash,
		token.ExpiresAt,
	))
	if err != nil {
		return err
	}

	// Carry over the generated values
	token.ID = created.ID
	token.CreatedAt = created.CreatedAt
	token.UpdatedAt = created.UpdatedAt
	return nil
}

// FindByID retrieves an integration token by its ID
func (r *PgxIntegrationTokenRepository) FindByID(ctx context.Context, id string) (*domain.IntegrationToken, error) {
	token, err := scanIntegrationToken(r.Pool.QueryRow(ctx, findIntegrationTokenByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return token, nil
}

// FindByUserID retrieves all integration tokens for a specific user
func (r *PgxIntegrationTokenRepository) FindByUserID(ctx context.Context, userID string) ([]domain.IntegrationToken, error) {
	rows, err := r.Pool.Query(ctx, findIntegrationTokensByUserIDQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []domain.IntegrationToken{}
	for rows.Next() {
		t, err := scanIntegrationToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *t)
	}
	return tokens, rows.Err()
}

// FindByToken finds a token by its hash (used for validation)
func (r *PgxIntegrationTokenRepository) FindByToken(ctx context.Context, tokenHash string) (*domain.IntegrationToken, error) {
	token, err := scanIntegrationToken(r.Pool.QueryRow(ctx, findIntegrationTokenByHashQuery, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return token, nil
}

// Update updates an existing integration token (e.g., to update last_used_at)
func (r *PgxIntegrationTokenRepository) Update(ctx context.Context, token *domain.IntegrationToken) error {
	updated, err := scanIntegrationToken(r.Pool.QueryRow(ctx, updateIntegrationTokenQuery, token.ID, token.LastUsedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return err
	}
	token.UpdatedAt = updated.UpdatedAt
	return nil
}

// Delete removes an integration token by ID (soft delete)
func (r *PgxIntegrationTokenRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, deleteIntegrationTokenQuery, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteExpired removes all expired integration tokens
func (r *PgxIntegrationTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.Pool.Exec(ctx, deleteExpiredIntegrationTokensQuery, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
