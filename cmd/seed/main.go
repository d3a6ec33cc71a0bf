package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"bucketlist/internal/config"
	"bucketlist/internal/repository"
	"bucketlist/internal/seed"
	authsvc "bucketlist/internal/service/auth"
	"bucketlist/internal/service/bucketlist"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	clearData := flag.Bool("clear-data", false, "Delete every item before seeding")
	clearOnly := flag.Bool("clear-only", false, "Delete every item and exit without seeding")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*clearData || *clearOnly) {
		log.Fatalf("BLOCKED: cannot run destructive operations (--clear-data or --clear-only) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	store, closeStore, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer closeStore()

	seeder := seed.NewSeeder(bucketlist.Dependencies{
		Loader:        bucketlist.NewLoader(store, logger),
		Items:         bucketlist.NewItemMutator(store, logger),
		Comments:      bucketlist.NewCommentMutator(store, cfg.MaxWriteRetries, logger),
		Authorizer:    authsvc.NewOwnerBasedAuthorizer(),
		Logger:        logger,
		RemoteTimeout: cfg.RemoteTimeout,
	}, logger)

	if *clearData || *clearOnly {
		removed, err := seeder.Clear(ctx)
		if err != nil {
			log.Fatalf("Failed to clear items: %v", err)
		}
		log.Printf("Cleared %d items", removed)
		if *clearOnly {
			return
		}
	}

	ids, err := seeder.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding stopped after %d items: %v", len(ids), err)
	}
	log.Printf("Seeded %d items (store: %s)", len(ids), cfg.Store)
}
