package repositories

import (
	"context"
	"time"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// IntegrationTokenRepository defines the interface for integration token data access operations
type IntegrationTokenRepository interface {
	// Create persists a new integration token
	Create(ctx context.Context, token *domain.IntegrationToken) error

	// FindByID retrieves an integration token by its ID
	FindByID(ctx context.Context, id string) (*domain.IntegrationToken, error)

	// FindByUserID retrieves all integration tokens for a specific user
	FindByUserID(ctx context.Context, userID string) ([]domain.IntegrationToken, error)

	// FindByToken finds a token by its hash (used for validation)
	FindByToken(ctx context.Context, tokenString string) (*domain.IntegrationToken, error)

	// Update updates an existing integration token (e.g., to update last_used_at)
	Update(ctx context.Context, token *domain.IntegrationToken) error

	// Delete removes an integration token by ID
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes all expired integration tokens
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
