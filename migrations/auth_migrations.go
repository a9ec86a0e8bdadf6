package migrations

import "gorm.io/gorm"

func GetAuthMigrations() []MigrationDefinition {
	return []MigrationDefinition{
		{
			Name: "2026_01_01_000000_create_users_table",
			Up: func(db *gorm.DB) error {
				return db.Exec(`
					CREATE TABLE IF NOT EXISTS users (
						id SERIAL PRIMARY KEY,
						username VARCHAR(100) UNIQUE NOT NULL,
						password VARCHAR(255) NOT NULL,
						role VARCHAR(20) NOT NULL DEFAULT 'viewer',
						enabled BOOLEAN DEFAULT true,
						last_login TIMESTAMPTZ NULL,
						nb_connexion INTEGER DEFAULT 0,
						created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
						updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
					);
					CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username);
				`).Error
			},
			Down: func(db *gorm.DB) error {
				return db.Exec("DROP TABLE IF EXISTS users CASCADE").Error
			},
		},
		{
			Name: "2026_01_02_000000_create_refresh_tokens_table",
			Up: func(db *gorm.DB) error {
				return db.Exec(`
					CREATE TABLE IF NOT EXISTS refresh_tokens (
						id SERIAL PRIMARY KEY,
						user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
						token VARCHAR(64) UNIQUE NOT NULL,
						expires_at TIMESTAMPTZ NOT NULL,
						created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
						updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
					);
					CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id);
					CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expires_at ON refresh_tokens(expires_at);
				`).Error
			},
			Down: func(db *gorm.DB) error {
				return db.Exec("DROP TABLE IF EXISTS refresh_tokens CASCADE").Error
			},
		},
	}
}
