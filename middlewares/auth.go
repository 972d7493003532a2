package middlewares

import (
	"net/http"
	"strings"

	"codearena/utils"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "token"

// SessionParser validates a session token.
type SessionParser interface {
	ParseSession(token string) (*utils.Claims, error)
}

// AuthMiddleware verifies the session token and sets "userID" in context.
// The cookie is preferred; a Bearer header is accepted for API clients.
func AuthMiddleware(sessions SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerOrCookie(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHORIZED", "message": "Missing session token"})
			return
		}

		claims, err := sessions.ParseSession(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHORIZED", "message": "Invalid or expired session"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}

func bearerOrCookie(c *gin.Context) (string, bool) {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
		return parts[1], true
	}
	return "", false
}

// UserID returns the id set by AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString("userID")
}
