package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/utils"
)

// tokenPrefix marks integration tokens so leaked credentials are
// recognizable in logs and scanners.
const tokenPrefix = "bil_"

// integrationTokenService implements the IntegrationTokenSvc interface
type integrationTokenService struct {
	tokenRepo portsrepo.IntegrationTokenRepository
	userSvc   portssvc.UserSvcFacade
}

// NewIntegrationTokenService creates a new instance of integrationTokenService
func NewIntegrationTokenService(tokenRepo portsrepo.IntegrationTokenRepository, userSvc portssvc.UserSvcFacade) portssvc.IntegrationTokenSvc {
	return &integrationTokenService{
		tokenRepo: tokenRepo,
		userSvc:   userSvc,
	}
}

var _ portssvc.IntegrationTokenSvc = (*integrationTokenService)(nil)

// CreateToken generates a new integration token for the user. The plaintext
// token is returned exactly once; only its hash is stored.
func (s *integrationTokenService) CreateToken(ctx context.Context, userID, name string, expiresIn *time.Duration) (string, *domain.IntegrationToken, error) {
	if userID == "" {
		return "", nil, errors.New("user ID is required")
	}
	if name == "" {
		return "", nil, errors.New("token name is required")
	}

	raw, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	token := tokenPrefix + raw

	var expiresAt *time.Time
	if expiresIn != nil {
		expiry := time.Now().Add(*expiresIn)
		expiresAt = &expiry
	}

	integrationToken := &domain.IntegrationToken{
		UserID:    userID,
		Name:      name,
		TokenHash: utils.HashToken(token),
		ExpiresAt: expiresAt,
	}

	if err := s.tokenRepo.Create(ctx, integrationToken); err != nil {
		return "", nil, fmt.Errorf("failed to save token: %w", err)
	}

	return token, integrationToken, nil
}

// ListTokens returns all integration tokens for a user
func (s *integrationTokenService) ListTokens(ctx context.Context, userID string) ([]domain.IntegrationToken, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	tokens, err := s.tokenRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, nil
}

// RevokeToken deletes a specific integration token for a user
func (s *integrationTokenService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	if userID == "" || tokenID == "" {
		return errors.New("user ID and token ID are required")
	}

	token, err := s.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		return fmt.Errorf("failed to find token: %w", err)
	}
	// Do not reveal whether the token exists for another user.
	if token.UserID != userID {
		return apperrors.ErrNotFound
	}

	if err := s.tokenRepo.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// ValidateToken checks if a token is valid and returns the associated user.
// Updates the last_used_at timestamp when valid.
func (s *integrationTokenService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	if tokenString == "" {
		return nil, apperrors.ErrUnauthorized
	}

	token, err := s.tokenRepo.FindByToken(ctx, utils.HashToken(tokenString))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}

	if token.IsExpired() {
		// Expired tokens are revoked on first use after expiry.
		_ = s.tokenRepo.Delete(ctx, token.ID)
		return nil, apperrors.ErrUnauthorized
	}

	// Last-used tracking is best effort; validation does not fail on it.
	token.UpdateLastUsed()
	_ = s.tokenRepo.Update(ctx, token)

	user, err := s.userSvc.GetUserByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user for token: %w", err)
	}
	return user, nil
}
