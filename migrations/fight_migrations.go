package migrations

import "gorm.io/gorm"

func GetFightMigrations() []MigrationDefinition {
	return []MigrationDefinition{
		{
			Name: "2026_01_03_000000_create_fights_table",
			Up: func(db *gorm.DB) error {
				return db.Exec(`
					CREATE TABLE IF NOT EXISTS fights (
						id VARCHAR(36) PRIMARY KEY,
						fight_number INTEGER NOT NULL,
						fighter_a VARCHAR(100) NOT NULL,
						fighter_a_club VARCHAR(100) NOT NULL,
						fighter_b VARCHAR(100) NOT NULL,
						fighter_b_club VARCHAR(100) NOT NULL,
						weight_class INTEGER NOT NULL,
						duration INTEGER NOT NULL,
						round_duration INTEGER NULL,
						nb_rounds INTEGER NULL,
						rest_time INTEGER NULL,
						fight_type VARCHAR(20) NOT NULL DEFAULT 'Boxing',
						expected_start TIMESTAMPTZ NULL,
						actual_start TIMESTAMPTZ NULL,
						actual_end TIMESTAMPTZ NULL,
						is_completed BOOLEAN DEFAULT false,
						is_cancelled BOOLEAN DEFAULT false,
						created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
						updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
						CONSTRAINT chk_fights_duration CHECK (duration > 0),
						CONSTRAINT chk_fights_type CHECK (fight_type IN ('Boxing', 'Muay Thai', 'Grappling', 'MMA'))
					);
					CREATE INDEX IF NOT EXISTS idx_fights_fight_number ON fights(fight_number);
					CREATE INDEX IF NOT EXISTS idx_fights_expected_start ON fights(expected_start);
				`).Error
			},
			Down: func(db *gorm.DB) error {
				return db.Exec("DROP TABLE IF EXISTS fights CASCADE").Error
			},
		},
	}
}

// GetAllMigrations returns every migration in the order they must run.
func GetAllMigrations() []MigrationDefinition {
	var all []MigrationDefinition
	all = append(all, GetAuthMigrations()...)
	all = append(all, GetFightMigrations()...)
	return all
}
