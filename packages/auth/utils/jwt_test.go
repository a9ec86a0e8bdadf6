package utils

import (
	"errors"
	"testing"
	"time"

	"fight-manager-api/packages/auth/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour, 24*time.Hour)
	user := models.User{ID: 7, Username: "admin", Role: models.RoleAdmin}

	signed, expiresAt, err := tokens.GenerateToken(user)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(expiresAt) < 59*time.Minute {
		t.Errorf("expiresAt = %v, want about an hour from now", expiresAt)
	}

	claims, err := tokens.ParseToken(signed)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 7 || claims.Username != "admin" || claims.Role != models.RoleAdmin {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	tokens := NewTokenManager("secret", time.Minute, time.Hour)
	signed, _, err := tokens.GenerateToken(models.User{ID: 1, Username: "admin"})
	if err != nil {
		t.Fatal(err)
	}

	other := NewTokenManager("other-secret", time.Minute, time.Hour)
	if _, err := other.ParseToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: err = %v", err)
	}

	tokens.SetClock(func() time.Time { return time.Now().Add(2 * time.Minute) })
	if _, err := tokens.ParseToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: err = %v", err)
	}

	if _, err := tokens.ParseToken("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: err = %v", err)
	}
}

func TestRefreshRotationAndCleanup(t *testing.T) {
	db := newTestDB(t)
	tokens := NewTokenManager("secret", time.Minute, time.Hour)
	user := models.User{Username: "admin", Password: "x", Role: models.RoleAdmin, Enabled: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}

	pair, err := tokens.GenerateTokenPair(db, user)
	if err != nil {
		t.Fatal(err)
	}
	if pair.Token != pair.AccessToken || pair.TokenType != "Bearer" || pair.ExpiresIn != 60 {
		t.Errorf("pair = %+v", pair)
	}

	rotated, err := tokens.RefreshAccessToken(db, pair.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if _, err := tokens.RefreshAccessToken(db, pair.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("old refresh token still accepted: %v", err)
	}

	tokens.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	removed, err := tokens.CleanExpiredTokens(db)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed %d expired tokens, want 1", removed)
	}
}
