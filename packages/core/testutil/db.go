// Package testutil opens throwaway databases carrying the real schema.
package testutil

import (
	"strings"
	"testing"

	"kicker-api/migrations"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// NewDB returns an in-memory SQLite database private to t, migrated with
// the production migrations. The pool holds a single connection so that
// concurrent callers serialize the way row locks would serialize them.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"

	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: "sqlite",
		DSN:        dsn,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	migrator, err := migrations.NewMigrator(db, nil)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	for _, m := range migrations.GetAllMigrations() {
		migrator.AddMigration(m)
	}
	if err := migrator.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
