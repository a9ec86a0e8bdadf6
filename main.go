package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fight-manager-api/config"
	_ "fight-manager-api/docs" // Swagger docs
	"fight-manager-api/packages/auth"
	authServices "fight-manager-api/packages/auth/services"
	authUtils "fight-manager-api/packages/auth/utils"
	"fight-manager-api/packages/core"
	"fight-manager-api/packages/core/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// @title           Fight Manager API
// @version         1.0
// @description     Schedule, run and display the fight card of a combat sports event.

// @contact.name   API Support

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if user, err := authServices.EnsureAdmin(db, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		log.Fatal("Failed to provision admin user: ", err)
	} else {
		log.Printf("Admin account ready: %s", user.Username)
	}

	var cache services.StatusCache = services.NoopStatusCache{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis unavailable at %s, serving the public board without cache: %v", cfg.Redis.Addr, err)
		} else {
			log.Printf("Public board cached in Redis at %s", cfg.Redis.Addr)
			cache = services.NewRedisStatusCache(rdb, cfg.Redis.CacheTTL)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	tokens := authUtils.NewTokenManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		time.Duration(cfg.JWT.RefreshTokenExpiryDays)*24*time.Hour,
	)
	authModule := auth.NewModule(db, tokens)
	authModule.SetupRoutes(r)

	coreModule := core.NewModule(db, cache, services.FightSettings{
		Buffer:             cfg.Fights.Buffer,
		MaxDurationMinutes: cfg.Fights.MaxDurationMinutes,
		Location:           cfg.App.Location,
	}, authModule.AdminOnly(), authModule)
	coreModule.SetupRoutes(r)

	// Swagger endpoint
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", healthHandler(db))

	if err := coreModule.StartScheduler(); err != nil {
		log.Fatal("Failed to start scheduler: ", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on port %s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	coreModule.StopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Message  string `json:"message" example:"Server is running"`
	Database string `json:"database" example:"connected"`
}

// @Summary Health Check
// @Description Check if the server is running and database is connected
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Message:  "Server is running",
				Database: "unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, HealthResponse{
			Message:  "Server is running",
			Database: "connected",
		})
	}
}
