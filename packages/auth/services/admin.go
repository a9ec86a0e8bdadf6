package services

import (
	"errors"
	"fmt"
	"log"

	"fight-manager-api/packages/auth/models"
	"fight-manager-api/packages/auth/utils"

	"gorm.io/gorm"
)

// EnsureAdmin crée le compte administrateur configuré s'il n'existe pas, et
// resynchronise son mot de passe et son rôle avec la configuration sinon.
func EnsureAdmin(db *gorm.DB, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("admin username and password are required")
	}

	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		hashed, err := utils.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		user = models.User{
			Username: username,
			Password: hashed,
			Role:     models.RoleAdmin,
			Enabled:  true,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		log.Printf("Admin account %q created", username)
		return &user, nil
	}

	changed := false
	if !utils.CheckPassword(password, user.Password) {
		hashed, err := utils.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		user.Password = hashed
		changed = true
	}
	if user.Role != models.RoleAdmin || !user.Enabled {
		user.Role = models.RoleAdmin
		user.Enabled = true
		changed = true
	}
	if changed {
		if err := db.Save(&user).Error; err != nil {
			return nil, err
		}
		log.Printf("Admin account %q updated from configuration", username)
	}
	return &user, nil
}
