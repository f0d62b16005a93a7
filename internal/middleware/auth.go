package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/scrumboard-api/internal/auth"
	"github.com/yukikurage/scrumboard-api/internal/constants"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
)

// RequireAuth checks if the user is authenticated via session, falling back
// to an Authorization: Bearer token when tokens is set.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID := session.Get(constants.ContextKeyUserID); userID != nil {
			// Store user ID in context for easy access in handlers
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
			return
		}

		if tokens != nil {
			if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
				claims, err := tokens.ParseToken(token)
				if err != nil {
					apierrors.Unauthorized(c, "Invalid or expired token")
					c.Abort()
					return
				}
				c.Set(constants.ContextKeyUserID, claims.UserID)
				c.Next()
				return
			}
		}

		apierrors.Unauthorized(c, "")
		c.Abort()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
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
