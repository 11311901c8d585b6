package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/spendwise/internal/config"
	"github.com/dvloznov/spendwise/internal/logger"
	"github.com/dvloznov/spendwise/internal/notionsync"
	bqstore "github.com/dvloznov/spendwise/internal/store/bigquery"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (optional)")
		userID     = flag.String("user-id", "", "user whose transactions to sync")
		dryRun     = flag.Bool("dry-run", false, "log what would change without writing to Notion")
	)
	flag.Parse()

	log := logger.New()

	if *userID == "" {
		log.Fatal().Msg("Error: --user-id is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cfg.Notion.Token == "" || cfg.Notion.TransactionDB == "" {
		log.Fatal().Msg("Notion token and transaction database must be configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	txStore, err := bqstore.NewStore(ctx, cfg.GCP.ProjectID, cfg.GCP.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create transaction store")
	}
	defer txStore.Close()

	notion := notionsync.NewNotionClient(cfg.Notion.Token)

	stats, err := notionsync.Sync(ctx, txStore, notion, cfg.Notion.TransactionDB, *userID, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Sync complete: %d created, %d updated, %d archived, %d skipped\n",
		stats.Created, stats.Updated, stats.Archived, stats.Skipped)
}
