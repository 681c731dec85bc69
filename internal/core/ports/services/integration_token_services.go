package services

import (
	"context"
	"time"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// IntegrationTokenSvc defines operations for integration token management
type IntegrationTokenSvc interface {
	// CreateToken generates a new integration token for the user
	// Returns the plaintext token (only shown once) and the token details
	CreateToken(ctx context.Context, userID, name string, expiresIn *time.Duration) (string, *domain.IntegrationToken, error)

	// ListTokens returns all integration tokens for a user
	ListTokens(ctx context.Context, userID string) ([]domain.IntegrationToken, error)

	// RevokeToken deletes a specific integration token for a user
	RevokeToken(ctx context.Context, userID, tokenID string) error

	// ValidateToken checks if a token is valid and returns the associated user
	// Updates the last_used_at timestamp if the token is valid
	ValidateToken(ctx context.Context, tokenString string) (*domain.User, error)
}
