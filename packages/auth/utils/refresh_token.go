package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"fight-manager-api/packages/auth/models"

	"gorm.io/gorm"
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// GenerateTokenPair génère un access token et un refresh token
func (m *TokenManager) GenerateTokenPair(db *gorm.DB, user models.User) (*models.TokenResponse, error) {
	accessToken, expiresAt, err := m.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	refreshTokenString, err := generateSecureToken()
	if err != nil {
		return nil, err
	}

	// Révoquer les anciens refresh tokens de l'utilisateur
	if err := db.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
		return nil, err
	}

	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshTokenString,
		ExpiresAt: m.now().Add(m.refreshExpiry),
	}
	if err := db.Create(&refreshToken).Error; err != nil {
		return nil, err
	}

	return m.response(accessToken, refreshTokenString, expiresAt), nil
}

// RefreshAccessToken génère un nouvel access token à partir d'un refresh token,
// avec rotation du refresh token
func (m *TokenManager) RefreshAccessToken(db *gorm.DB, refreshTokenString string) (*models.TokenResponse, error) {
	var refreshToken models.RefreshToken
	if err := db.Preload("User").Where("token = ?", refreshTokenString).First(&refreshToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if refreshToken.IsExpired(m.now()) || !refreshToken.User.Enabled {
		db.Delete(&refreshToken)
		return nil, ErrInvalidRefreshToken
	}

	accessToken, expiresAt, err := m.GenerateToken(refreshToken.User)
	if err != nil {
		return nil, err
	}

	newRefreshTokenString, err := generateSecureToken()
	if err != nil {
		return nil, err
	}
	refreshToken.Token = newRefreshTokenString
	refreshToken.ExpiresAt = m.now().Add(m.refreshExpiry)
	if err := db.Save(&refreshToken).Error; err != nil {
		return nil, err
	}

	return m.response(accessToken, newRefreshTokenString, expiresAt), nil
}

// RevokeRefreshToken révoque un refresh token
func RevokeRefreshToken(db *gorm.DB, refreshTokenString string) error {
	return db.Where("token = ?", refreshTokenString).Delete(&models.RefreshToken{}).Error
}

// CleanExpiredTokens supprime les tokens expirés (appelé par le cron)
func (m *TokenManager) CleanExpiredTokens(db *gorm.DB) (int64, error) {
	result := db.Where("expires_at < ?", m.now()).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

func (m *TokenManager) response(accessToken, refreshToken string, expiresAt time.Time) *models.TokenResponse {
	return &models.TokenResponse{
		Token:        accessToken,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(m.accessExpiry.Seconds()),
		ExpiresAt:    expiresAt,
	}
}

// generateSecureToken génère un token sécurisé pour le refresh token
func generateSecureToken() (string, error) {
	bytes := make([]byte, 32) // 256 bits
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
