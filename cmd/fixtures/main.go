package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"kicker-api/config"
	"kicker-api/fixtures"

	"go.uber.org/zap"
)

func main() {
	opts := fixtures.DefaultOptions()
	flag.IntVar(&opts.Kickers, "kickers", opts.Kickers, "number of kickers")
	flag.IntVar(&opts.PlayersPerKicker, "players", opts.PlayersPerKicker, "players per kicker")
	flag.IntVar(&opts.MatchesPerKicker, "matches", opts.MatchesPerKicker, "matches per kicker")
	flag.Int64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	fixtureManager := fixtures.NewFixtures(db, logger)
	ctx := context.Background()

	switch command := flag.Arg(0); command {
	case "generate":
		if err := fixtureManager.GenerateTestData(ctx, opts); err != nil {
			logger.Fatal("failed to generate fixtures", zap.Error(err))
		}
		fmt.Println("Fixtures generated successfully!")
	case "clear":
		if err := fixtureManager.ClearAllData(ctx); err != nil {
			logger.Fatal("failed to clear fixtures", zap.Error(err))
		}
		fmt.Println("All fixture data cleared!")
	case "regenerate":
		if err := fixtureManager.ClearAllData(ctx); err != nil {
			logger.Fatal("failed to clear fixtures", zap.Error(err))
		}
		if err := fixtureManager.GenerateTestData(ctx, opts); err != nil {
			logger.Fatal("failed to generate fixtures", zap.Error(err))
		}
		fmt.Println("Fixtures regenerated successfully!")
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/fixtures [flags] generate    - Play matches on fresh kickers through the services")
	fmt.Println("  go run ./cmd/fixtures [flags] clear       - Clear all data")
	fmt.Println("  go run ./cmd/fixtures [flags] regenerate  - Clear and regenerate all data")
	fmt.Println("Flags: -kickers, -players, -matches, -seed")
}
