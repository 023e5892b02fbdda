package migrations

import (
	"kicker-api/packages/core/models"

	"gorm.io/gorm"
)

// GetAllMigrations returns the schema history in application order.
func GetAllMigrations() []MigrationDefinition {
	return []MigrationDefinition{
		{
			Name: "2026_01_01_000000_create_kicker_tables",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(
					&models.Kicker{},
					&models.Player{},
					&models.Season{},
					&models.SeasonRanking{},
					&models.Match{},
					&models.Goal{},
					&models.MmrHistory{},
				)
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(
					&models.MmrHistory{},
					&models.Goal{},
					&models.Match{},
					&models.SeasonRanking{},
					&models.Season{},
					&models.Player{},
					&models.Kicker{},
				)
			},
		},
		{
			// At most one active match and one active season per kicker,
			// enforced by the store so that racing writers cannot both win.
			Name: "2026_01_01_000001_add_single_active_indexes",
			Up: func(db *gorm.DB) error {
				if err := db.Exec(`
					CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_one_active_per_kicker
					ON matches (kicker_id)
					WHERE status = 'active' AND deleted_at IS NULL
				`).Error; err != nil {
					return err
				}
				return db.Exec(`
					CREATE UNIQUE INDEX IF NOT EXISTS idx_seasons_one_active_per_kicker
					ON seasons (kicker_id)
					WHERE is_active AND deleted_at IS NULL
				`).Error
			},
			Down: func(db *gorm.DB) error {
				if err := db.Exec(`DROP INDEX IF EXISTS idx_seasons_one_active_per_kicker`).Error; err != nil {
					return err
				}
				return db.Exec(`DROP INDEX IF EXISTS idx_matches_one_active_per_kicker`).Error
			},
		},
	}
}
