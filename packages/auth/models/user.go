package models

import (
	"time"
)

type User struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Username    string     `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Password    string     `json:"-" gorm:"not null"`
	Role        string     `json:"role" gorm:"size:20;not null;default:viewer"`
	Enabled     bool       `json:"enabled" gorm:"default:true"`
	LastLogin   *time.Time `json:"last_login"`
	NbConnexion int        `json:"nb_connexion" gorm:"default:0"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName spécifie le nom de la table au pluriel
func (User) TableName() string {
	return "users"
}

// HasRole vérifie si l'utilisateur a un rôle spécifique
func (u *User) HasRole(role string) bool {
	return u.Role == role
}

// LoginRequest accepte du JSON ou un formulaire
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}
