package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ArowuTest/sequence-draw-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const bearerSchema = "Bearer "

// JWTAuthMiddleware marks the request privileged when it carries a valid
// operator token. Requests without a token continue unprivileged; an invalid
// or expired token is rejected with 401.
func JWTAuthMiddleware(tokens *jwt.TokenService, adminRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(PrivilegedKey, false)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer ", "code": "UNAUTHORIZED"})
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(authHeader[len(bearerSchema):]))
		if err != nil {
			slog.Warn("JWTAuthMiddleware: token validation failed", "error", err, "requestId", c.GetString(RequestIDKey))
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": "UNAUTHORIZED"})
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(PrivilegedKey, claims.Role == adminRole)
		c.Next()
	}
}

// RequireAdmin rejects requests JWTAuthMiddleware did not mark privileged
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsPrivileged(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Operator token required", "code": "UNAUTHORIZED"})
			return
		}
		c.Next()
	}
}

// IsPrivileged reports whether the request carries a valid operator token
func IsPrivileged(c *gin.Context) bool {
	return c.GetBool(PrivilegedKey)
}
