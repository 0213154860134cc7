package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	userIDKey   = "user_id"
	usernameKey = "username"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}
		if !authenticate(c, validator, authHeader) {
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a token is sent and lets
// anonymous requests through. A malformed or expired token is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && !authenticate(c, validator, authHeader) {
			return
		}
		c.Next()
	}
}

// authenticate accepts "Bearer <jwt>" and "Token <jwt>".
func authenticate(c *gin.Context, validator TokenValidator, authHeader string) bool {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Token") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
		c.Abort()
		return false
	}

	claims, err := validator.ValidateToken(parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		c.Abort()
		return false
	}

	// Store user info in context
	c.Set(userIDKey, claims.UserID)
	c.Set(usernameKey, claims.Username)
	return true
}

// UserID returns the authenticated user's id.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Actor returns the authenticated user's id or nil for anonymous requests.
func Actor(c *gin.Context) *uuid.UUID {
	id, ok := UserID(c)
	if !ok {
		return nil
	}
	return &id
}
