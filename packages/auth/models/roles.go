package models

// Constantes pour les rôles disponibles
const (
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
)

// GetDefaultRole retourne le rôle par défaut pour un nouvel utilisateur
func GetDefaultRole() string {
	return RoleViewer
}

// GetAllRoles retourne tous les rôles disponibles
func GetAllRoles() []string {
	return []string{
		RoleViewer,
		RoleAdmin,
	}
}
