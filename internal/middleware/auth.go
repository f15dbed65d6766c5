package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/clinica-dental-api/internal/utils"
)

const (
	// AuthCookie carries the session token for browser clients.
	AuthCookie = "authToken"

	UserIDKey   = "userID"
	UserRoleKey = "userRole"
)

// SessionToken returns the token from the Authorization header or, failing
// that, from the session cookie.
func SessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(AuthCookie); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session and stores the
// caller's id and role in the context.
func AuthMiddleware(tokens *utils.TokenManager, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := SessionToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}

		claims, err := tokens.ParseSession(tokenString)
		if err != nil {
			log.WithError(err).WithField("request_id", GetRequestID(c)).Debug("Auth: rejected session token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		// Set user info in the context for handlers to use
		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

// RequireRoles lets the request through only when the caller holds one of
// roles. It must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, c.GetString(UserRoleKey)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "permission denied"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the id and role stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (id, role string) {
	return c.GetString(UserIDKey), c.GetString(UserRoleKey)
}
