package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"fight-manager-api/config"
	"fight-manager-api/fixtures"
	"fight-manager-api/packages/core/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	flags := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	count := flags.Int("count", 20, "number of fights to generate")
	seed := flags.Int64("seed", time.Now().UnixNano(), "random seed")
	flags.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal(err)
	}

	fightService := services.NewFightService(db, nil, services.FightSettings{
		Buffer:             cfg.Fights.Buffer,
		MaxDurationMinutes: cfg.Fights.MaxDurationMinutes,
		Location:           cfg.App.Location,
	})
	fixtureManager := fixtures.NewFixtures(db, fightService, *seed)
	ctx := context.Background()

	switch command := os.Args[1]; command {
	case "generate":
		if err := fixtureManager.GenerateTestData(ctx, *count); err != nil {
			log.Fatal("Failed to generate fixtures:", err)
		}
		fmt.Println("✅ Fixtures generated successfully!")
	case "clear":
		if err := fixtureManager.ClearAllData(ctx); err != nil {
			log.Fatal("Failed to clear fixtures:", err)
		}
		fmt.Println("✅ All fixture data cleared!")
	case "regenerate":
		fmt.Println("Clearing existing data...")
		if err := fixtureManager.ClearAllData(ctx); err != nil {
			log.Fatal("Failed to clear fixtures:", err)
		}
		fmt.Println("Generating new fixtures...")
		if err := fixtureManager.GenerateTestData(ctx, *count); err != nil {
			log.Fatal("Failed to generate fixtures:", err)
		}
		fmt.Println("✅ Fixtures regenerated successfully!")
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/fixtures generate [-count N] [-seed S]   - Generate a demo fight card")
	fmt.Println("  go run ./cmd/fixtures clear                           - Clear fights, tokens and the demo viewer")
	fmt.Println("  go run ./cmd/fixtures regenerate [-count N] [-seed S] - Clear and regenerate")
}
