package migrations

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"unique;not null"`
	Batch     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type MigrationFunc func(*gorm.DB) error

type MigrationDefinition struct {
	Name string
	Up   MigrationFunc
	Down MigrationFunc
}

type Migrator struct {
	db         *gorm.DB
	migrations []MigrationDefinition
	logger     *zap.Logger
}

func NewMigrator(db *gorm.DB, logger *zap.Logger) (*Migrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}
	return &Migrator{
		db:     db,
		logger: logger,
	}, nil
}

func (m *Migrator) AddMigration(migration MigrationDefinition) {
	m.migrations = append(m.migrations, migration)
}

// Migrate runs every pending migration in one new batch, each in its own
// transaction.
func (m *Migrator) Migrate() error {
	batch, err := m.latestBatch()
	if err != nil {
		return err
	}
	batch++

	applied := 0
	for _, migration := range m.migrations {
		done, err := m.hasRun(migration.Name)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		m.logger.Info("migrating", zap.String("migration", migration.Name))

		err = m.db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return fmt.Errorf("migration %s failed: %w", migration.Name, err)
			}
			if err := tx.Create(&Migration{Name: migration.Name, Batch: batch}).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		applied++
	}

	m.logger.Info("migrations completed", zap.Int("applied", applied), zap.Int("batch", batch))
	return nil
}

// Rollback reverts the last steps batches, newest migration first.
func (m *Migrator) Rollback(steps int) error {
	if steps <= 0 {
		steps = 1
	}

	batch, err := m.latestBatch()
	if err != nil {
		return err
	}

	for i := 0; i < steps && batch > 0; i++ {
		var records []Migration
		if err := m.db.Where("batch = ?", batch).Order("id DESC").Find(&records).Error; err != nil {
			return fmt.Errorf("load batch %d: %w", batch, err)
		}

		for _, record := range records {
			migration := m.findMigration(record.Name)
			if migration == nil {
				return fmt.Errorf("migration definition not found: %s", record.Name)
			}
			if migration.Down == nil {
				return fmt.Errorf("rollback not defined for migration: %s", record.Name)
			}

			m.logger.Info("rolling back", zap.String("migration", record.Name))

			err := m.db.Transaction(func(tx *gorm.DB) error {
				if err := migration.Down(tx); err != nil {
					return fmt.Errorf("rollback failed for %s: %w", record.Name, err)
				}
				if err := tx.Delete(&record).Error; err != nil {
					return fmt.Errorf("failed to remove migration record %s: %w", record.Name, err)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		batch--
	}

	return nil
}

// Status lists the applied migrations by batch.
func (m *Migrator) Status() ([]Migration, error) {
	var records []Migration
	if err := m.db.Order("batch ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (m *Migrator) hasRun(name string) (bool, error) {
	var count int64
	if err := m.db.Model(&Migration{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return count > 0, nil
}

func (m *Migrator) latestBatch() (int, error) {
	var batch int
	if err := m.db.Model(&Migration{}).Select("COALESCE(MAX(batch), 0)").Scan(&batch).Error; err != nil {
		return 0, fmt.Errorf("load latest batch: %w", err)
	}
	return batch, nil
}

func (m *Migrator) findMigration(name string) *MigrationDefinition {
	for i := range m.migrations {
		if m.migrations[i].Name == name {
			return &m.migrations[i]
		}
	}
	return nil
}
