package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// contextKey is a private type for context keys to prevent collisions.
type contextKey string

const (
	// userIDKey stores the authenticated user's ID.
	userIDKey = contextKey("userID")
	// loggerCtxKey stores the request-scoped slog logger.
	loggerCtxKey = contextKey("logger")
	// authMethodKey records which middleware authenticated the request.
	authMethodKey = "authMethod"
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin
// context, falling back to the request context. It returns the user ID and a
// boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if v := c.Request.Context().Value(userIDKey); v != nil {
			return v.(string), true
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}
	return userID, true
}

// WithUserID returns a context carrying the given user ID. Used by auth
// middlewares and tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
