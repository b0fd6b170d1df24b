package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/egabank/ledger/internal/auth"
)

// AuthRequired parses the Bearer token, rejects revoked or invalid tokens and
// stores the caller's identity in the request context.
func AuthRequired(tokens *auth.TokenManager, revoker *auth.Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization header format"})
			c.Abort()
			return
		}
		tokenString := parts[1]

		if revoker != nil && revoker.IsRevoked(tokenString) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Token has been revoked"})
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("clientId", claims.ClientID)
		c.Set("email", claims.Email)
		c.Set("token", tokenString)
		c.Next()
	}
}

// GetClientID returns the authenticated client's ID from the request context.
func GetClientID(c *gin.Context) (string, bool) {
	clientID, exists := c.Get("clientId")
	if !exists {
		return "", false
	}
	return clientID.(string), true
}

// GetToken returns the raw bearer token stored by AuthRequired.
func GetToken(c *gin.Context) (string, bool) {
	token, exists := c.Get("token")
	if !exists {
		return "", false
	}
	return token.(string), true
}
