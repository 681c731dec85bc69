package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
	"github.com/ostwerk/billable_app/internal/middleware"
)

// integrationTokenHandler handles HTTP requests for integration token operations.
type integrationTokenHandler struct {
	tokenSvc portssvc.IntegrationTokenSvc
}

func newIntegrationTokenHandler(tokenSvc portssvc.IntegrationTokenSvc) *integrationTokenHandler {
	return &integrationTokenHandler{
		tokenSvc: tokenSvc,
	}
}

// registerIntegrationTokenRoutes registers the integration token routes.
func registerIntegrationTokenRoutes(rg *gin.RouterGroup, tokenSvc portssvc.IntegrationTokenSvc) {
	h := newIntegrationTokenHandler(tokenSvc)

	tokens := rg.Group("/tokens")
	{
		tokens.POST("", h.createToken)
		tokens.GET("", h.listTokens)
		tokens.DELETE("/:id", h.revokeToken)
	}
}

// createToken godoc
// @Summary Create a new integration token
// @Description Creates a new integration token for the authenticated user. The plaintext token is shown only once upon creation.
// @Description External accounting tools authenticate with it via the x-api-key header.
// @Tags tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateIntegrationTokenRequest true "Token creation details"
// @Success 201 {object} dto.CreateIntegrationTokenResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create token"
// @Router /tokens [post]
func (h *integrationTokenHandler) createToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateIntegrationTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	var expiresIn *time.Duration
	if req.ExpiresInSeconds != nil {
		d := time.Duration(*req.ExpiresInSeconds) * time.Second
		expiresIn = &d
	}

	tokenStr, token, err := h.tokenSvc.CreateToken(c.Request.Context(), userID, req.Name, expiresIn)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create token")
		return
	}

	c.JSON(http.StatusCreated, dto.ToCreateIntegrationTokenResponse(tokenStr, token))
}

// listTokens godoc
// @Summary List integration tokens
// @Description Lists the authenticated user's integration tokens. Only metadata is returned, never the token values.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ListIntegrationTokensResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list tokens"
// @Router /tokens [get]
func (h *integrationTokenHandler) listTokens(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tokens, err := h.tokenSvc.ListTokens(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list tokens")
		return
	}

	c.JSON(http.StatusOK, dto.ToListIntegrationTokensResponse(tokens))
}

// revokeToken godoc
// @Summary Revoke an integration token
// @Description Revokes a specific integration token by ID. The token is invalidated immediately.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Param id path string true "Token ID (UUID format)" format(uuid)
// @Success 204 "Token revoked"
// @Failure 400 {object} map[string]string "Invalid token ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Token not found"
// @Failure 500 {object} map[string]string "Failed to revoke token"
// @Router /tokens/{id} [delete]
func (h *integrationTokenHandler) revokeToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tokenID := c.Param("id")
	if _, err := uuid.Parse(tokenID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token ID"})
		return
	}

	if err := h.tokenSvc.RevokeToken(c.Request.Context(), userID, tokenID); err != nil {
		respondServiceError(c, logger, err, "Failed to revoke token")
		return
	}

	c.Status(http.StatusNoContent)
}
