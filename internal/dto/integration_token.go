package dto

import (
	"time"

	"github.com/ostwerk/billable_app/internal/core/domain"
)

// CreateIntegrationTokenRequest defines the data needed to create an integration token.
type CreateIntegrationTokenRequest struct {
	Name             string `json:"name" binding:"required,min=3,max=100"`
	ExpiresInSeconds *int64 `json:"expiresInSeconds,omitempty"`
}

// IntegrationTokenResponse represents integration token metadata in API responses.
// The plaintext token value is never included here.
type IntegrationTokenResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// CreateIntegrationTokenResponse is returned when a token is created. Token
// carries the plaintext value, shown only this once.
type CreateIntegrationTokenResponse struct {
	Token   string                   `json:"token"`
	Details IntegrationTokenResponse `json:"details"`
}

// ListIntegrationTokensResponse wraps the list of integration tokens.
type ListIntegrationTokensResponse struct {
	Tokens []IntegrationTokenResponse `json:"tokens"`
}

// ToIntegrationTokenResponse converts a domain.IntegrationToken to its response DTO.
func ToIntegrationTokenResponse(token *domain.IntegrationToken) IntegrationTokenResponse {
	return IntegrationTokenResponse{
		ID:         token.ID,
		Name:       token.Name,
		LastUsedAt: token.LastUsedAt,
		ExpiresAt:  token.ExpiresAt,
		CreatedAt:  token.CreatedAt,
	}
}

// ToCreateIntegrationTokenResponse pairs the plaintext token with its metadata.
func ToCreateIntegrationTokenResponse(tokenString string, token *domain.IntegrationToken) CreateIntegrationTokenResponse {
	return CreateIntegrationTokenResponse{
		Token:   tokenString,
		Details: ToIntegrationTokenResponse(token),
	}
}

// ToListIntegrationTokensResponse converts domain tokens to the list response DTO.
func ToListIntegrationTokensResponse(tokens []domain.IntegrationToken) ListIntegrationTokensResponse {
	list := make([]IntegrationTokenResponse, len(tokens))
	for i := range tokens {
		list[i] = ToIntegrationTokenResponse(&tokens[i])
	}
	return ListIntegrationTokensResponse{Tokens: list}
}
