package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const emailKey = "email"

// TokenVerifier resolves a bearer token to its subject email.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			RespondWithError(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		email, err := verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		// Set subject in context
		c.Set(emailKey, email)
		c.Next()
	}
}

// SetEmail stores the authenticated subject on the context.
func SetEmail(c *gin.Context, email string) {
	c.Set(emailKey, email)
}

func GetEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(emailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok && s != ""
}
