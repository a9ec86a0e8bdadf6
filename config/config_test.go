package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "PORT", "DATABASE_URL", "FIGHT_DURATION_BUFFER_MINUTES",
		"MAX_DURATION_MINUTES", "ACCESS_TOKEN_EXPIRE_MINUTES", "REDIS_HOST", "TIMEZONE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Fights.Buffer != 2*time.Minute {
		t.Errorf("Buffer = %v, want 2m", cfg.Fights.Buffer)
	}
	if cfg.Fights.MaxDurationMinutes != 60 {
		t.Errorf("MaxDurationMinutes = %d, want 60", cfg.Fights.MaxDurationMinutes)
	}
	if cfg.JWT.AccessTokenExpiry != 24*time.Hour {
		t.Errorf("AccessTokenExpiry = %v, want 24h", cfg.JWT.AccessTokenExpiry)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("Redis.Addr = %q, want empty without REDIS_HOST", cfg.Redis.Addr)
	}
	if len(cfg.App.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.App.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("FIGHT_DURATION_BUFFER_MINUTES", "5")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/fights")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Fights.Buffer != 5*time.Minute {
		t.Errorf("Buffer = %v, want 5m", cfg.Fights.Buffer)
	}
	if cfg.Redis.Addr != "cache:6380" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.DSN() != "postgres://u:p@db/fights" {
		t.Errorf("DSN = %q", cfg.DSN())
	}
}

func TestLoadRejectsBadInteger(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("MAX_DURATION_MINUTES", "sixty")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-integer MAX_DURATION_MINUTES")
	}
}
