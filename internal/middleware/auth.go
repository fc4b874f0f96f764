package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/constants"
	apierrors "github.com/yukikurage/teamtask/internal/errors"
)

// TokenAuthenticator resolves a bearer token to a user ID.
type TokenAuthenticator interface {
	Authenticate(token string) (uint64, error)
}

// RequireAuth checks for a valid bearer token
func RequireAuth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		userID, err := auth.Authenticate(token)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(constants.HeaderAuthorization)
	if !strings.HasPrefix(header, constants.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix))
	return token, token != ""
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
