package auth

import (
	"context"

	"fight-manager-api/packages/auth/handlers"
	"fight-manager-api/packages/auth/middleware"
	"fight-manager-api/packages/auth/models"
	"fight-manager-api/packages/auth/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Module struct {
	Handler *handlers.AuthHandler
	Tokens  *utils.TokenManager
	db      *gorm.DB
}

func NewModule(db *gorm.DB, tokens *utils.TokenManager) *Module {
	return &Module{
		Handler: handlers.NewAuthHandler(db, tokens),
		Tokens:  tokens,
		db:      db,
	}
}

func (m *Module) SetupRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", m.Handler.Login)
		auth.POST("/refresh", m.Handler.RefreshToken)
		auth.POST("/logout", m.Handler.Logout)
	}

	users := r.Group("/users")
	{
		users.GET("/me", m.JWTMiddleware(), m.Handler.Profile)
	}
}

func (m *Module) JWTMiddleware() gin.HandlerFunc {
	return middleware.JWTMiddleware(m.Tokens)
}

func (m *Module) RequireRole(role string) gin.HandlerFunc {
	return middleware.RequireRole(m.db, role)
}

// AdminOnly enchaîne l'authentification JWT et la vérification du rôle admin
func (m *Module) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{m.JWTMiddleware(), m.RequireRole(models.RoleAdmin)}
}

// PurgeExpiredTokens supprime les refresh tokens expirés
func (m *Module) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return m.Tokens.CleanExpiredTokens(m.db.WithContext(ctx))
}

func GetUserID(c *gin.Context) (uint, bool) {
	return middleware.GetUserID(c)
}
