package middleware

import (
	"net/http"
	"strings"

	"fight-manager-api/packages/auth/utils"

	"github.com/gin-gonic/gin"
)

const (
	contextUserID   = "user_id"
	contextUsername = "username"
	contextRole     = "user_role"
)

// JWTMiddleware exige un header "Authorization: Bearer <token>" valide
func JWTMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, tokenString, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		claims, err := tokens.ParseToken(strings.TrimSpace(tokenString))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextUsername, claims.Username)
		c.Set(contextRole, claims.Role)
		c.Next()
	}
}

// GetUserID récupère l'ID de l'utilisateur authentifié
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(contextUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// GetUsername récupère le nom de l'utilisateur authentifié
func GetUsername(c *gin.Context) (string, bool) {
	value, exists := c.Get(contextUsername)
	if !exists {
		return "", false
	}
	name, ok := value.(string)
	return name, ok
}
