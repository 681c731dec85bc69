package middleware

import (
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// IntegrationTokenAuth authenticates requests carrying an x-api-key header,
// used by external accounting software to pull exports. When no key is
// present or validation fails, the request falls through to JWT auth.
func IntegrationTokenAuth(tokenSvc portssvc.IntegrationTokenSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("x-api-key")
		if apiKey == "" {
			c.Next() // No api key provided, let it continue
			return
		}

		user, err := tokenSvc.ValidateToken(c.Request.Context(), apiKey)
		if err != nil {
			c.Next() // Token validation failed, let JWT auth decide
			return
		}

		// Token is valid, set user ID in context and skip JWT auth
		c.Set(string(userIDKey), user.UserID)
		c.Set(authMethodKey, "integration_token")
		c.Next()
	}
}
