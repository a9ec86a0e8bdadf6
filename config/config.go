package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	App struct {
		Env            string
		Port           string
		AllowedOrigins []string
		Location       *time.Location
	}
	DB struct {
		URL      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}
	JWT struct {
		Secret                 string
		AccessTokenExpiry      time.Duration
		RefreshTokenExpiryDays int
	}
	Admin struct {
		Username string
		Password string
	}
	Fights struct {
		Buffer             time.Duration
		MaxDurationMinutes int
	}
	Redis struct {
		Addr     string
		Password string
		CacheTTL time.Duration
	}
}

const (
	defaultJWTSecret     = "your-secret-key"
	defaultAdminPassword = "admin"
)

// Load reads the configuration from the environment. godotenv is expected to
// have populated it already.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.Port = getEnv("PORT", "8080")
	cfg.App.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"))

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.App.Location = loc

	cfg.DB.URL = getEnv("DATABASE_URL", "")
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "password")
	cfg.DB.Name = getEnv("DB_NAME", "fightdb")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.JWT.Secret = getEnv("JWT_SECRET", defaultJWTSecret)
	accessMinutes, err := getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 24*60)
	if err != nil {
		return nil, err
	}
	cfg.JWT.AccessTokenExpiry = time.Duration(accessMinutes) * time.Minute
	if cfg.JWT.RefreshTokenExpiryDays, err = getEnvAsInt("REFRESH_TOKEN_EXPIRE_DAYS", 7); err != nil {
		return nil, err
	}

	cfg.Admin.Username = getEnv("ADMIN_USERNAME", "admin")
	cfg.Admin.Password = getEnv("ADMIN_PASSWORD", defaultAdminPassword)

	bufferMinutes, err := getEnvAsInt("FIGHT_DURATION_BUFFER_MINUTES", 2)
	if err != nil {
		return nil, err
	}
	cfg.Fights.Buffer = time.Duration(bufferMinutes) * time.Minute
	if cfg.Fights.MaxDurationMinutes, err = getEnvAsInt("MAX_DURATION_MINUTES", 60); err != nil {
		return nil, err
	}

	if host := getEnv("REDIS_HOST", ""); host != "" {
		cfg.Redis.Addr = host + ":" + getEnv("REDIS_PORT", "6379")
	}
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	ttl, err := getEnvAsInt("STATUS_CACHE_TTL_SECONDS", 15)
	if err != nil {
		return nil, err
	}
	cfg.Redis.CacheTTL = time.Duration(ttl) * time.Second

	if cfg.JWT.Secret == defaultJWTSecret {
		log.Println("WARNING: Using default JWT secret. Set JWT_SECRET for production.")
	}
	if cfg.Admin.Password == defaultAdminPassword && cfg.IsProduction() {
		log.Println("WARNING: Using default admin password in production. Set ADMIN_PASSWORD.")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN prefers DATABASE_URL and falls back to the discrete DB_* settings.
func (c *Config) DSN() string {
	if c.DB.URL != "" {
		return c.DB.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DB.Host,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.Port,
		c.DB.SSLMode,
	)
}

// ConnectDatabase opens the Postgres connection, logging SQL in development.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{}
	if cfg.App.Env == "development" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Successfully connected to database!")
	return db, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected integer, got '%s'", key, valueStr)
	}
	return value, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
