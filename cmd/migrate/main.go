package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"kicker-api/config"
	"kicker-api/migrations"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	migrator, err := migrations.NewMigrator(db, logger)
	if err != nil {
		logger.Fatal("migrator setup failed", zap.Error(err))
	}
	for _, migration := range migrations.GetAllMigrations() {
		migrator.AddMigration(migration)
	}

	switch command := os.Args[1]; command {
	case "migrate":
		if err := migrator.Migrate(); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
	case "rollback":
		steps := 1
		if len(os.Args) > 2 {
			if s, err := strconv.Atoi(os.Args[2]); err == nil {
				steps = s
			}
		}
		if err := migrator.Rollback(steps); err != nil {
			logger.Fatal("rollback failed", zap.Error(err))
		}
	case "status":
		showStatus(migrator)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/migrate migrate          - Run pending migrations")
	fmt.Println("  go run ./cmd/migrate rollback [steps] - Rollback migrations (default: 1)")
	fmt.Println("  go run ./cmd/migrate status           - Show migration status")
}

func showStatus(migrator *migrations.Migrator) {
	records, err := migrator.Status()
	if err != nil {
		log.Fatalf("status: %v", err)
	}

	if len(records) == 0 {
		fmt.Println("No migrations have been run yet.")
		return
	}

	fmt.Println("Migration Status:")
	fmt.Println("Batch | Name")
	fmt.Println("------|-----")

	for _, record := range records {
		fmt.Printf("%-5d | %s\n", record.Batch, record.Name)
	}
}
