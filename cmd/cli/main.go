package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendwise/internal/analytics"
	"github.com/dvloznov/spendwise/internal/config"
	"github.com/dvloznov/spendwise/internal/export"
	"github.com/dvloznov/spendwise/internal/extract"
	"github.com/dvloznov/spendwise/internal/jobs"
	"github.com/dvloznov/spendwise/internal/logger"
	bqstore "github.com/dvloznov/spendwise/internal/store/bigquery"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		runParse(log)
	case "summary":
		runSummary(log)
	case "export":
		runExport(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Spendwise CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  parse     Extract a transaction from free text")
	fmt.Println("  summary   Print income, expenses and savings for a user")
	fmt.Println("  export    Export a user's transactions to GCS")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func loadConfig(path string, log zerolog.Logger) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	return cfg
}

func runParse(log zerolog.Logger) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	text := fs.String("text", "", "free-text transaction description")
	configPath := fs.String("config", "", "path to config file (optional)")
	model := fs.String("model", "", "Gemini model name (overrides config)")
	fs.Parse(os.Args[2:])

	if *text == "" {
		log.Fatal().Msg("Error: --text is required")
	}

	cfg := loadConfig(*configPath, log)
	if *model == "" {
		*model = cfg.Gemini.Model
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	engine := extract.NewEngine(extract.NewGeminiGenerator(*model), log)
	candidate := engine.Extract(ctx, *text)

	out, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(out))
}

func runSummary(log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	userID := fs.String("user-id", "", "user whose records to summarize")
	configPath := fs.String("config", "", "path to config file (optional)")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("Error: --user-id is required")
	}

	cfg := loadConfig(*configPath, log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	txStore, err := bqstore.NewStore(ctx, cfg.GCP.ProjectID, cfg.GCP.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create transaction store")
	}
	defer txStore.Close()

	svc := analytics.NewService(txStore, log)

	summary, message, err := svc.Summarize(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to calculate summary")
	}

	fmt.Println(message)
	fmt.Printf("  Income:   %.2f\n", summary.Income)
	fmt.Printf("  Expenses: %.2f\n", summary.Expenses)
	fmt.Printf("  Savings:  %.2f\n", summary.Savings)

	categories, err := svc.CategoryBreakdown(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to calculate category spending")
	}
	if len(categories) > 0 {
		fmt.Println("\nSpending by category:")
		for _, c := range categories {
			fmt.Printf("  %-12s %.2f\n", c.Category, c.Amount)
		}
	}
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	userID := fs.String("user-id", "", "user whose records to export")
	configPath := fs.String("config", "", "path to config file (optional)")
	bucket := fs.String("bucket", "", "GCS bucket (overrides config)")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("Error: --user-id is required")
	}

	cfg := loadConfig(*configPath, log)
	if *bucket == "" {
		*bucket = cfg.GCP.Bucket
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	txStore, err := bqstore.NewStore(ctx, cfg.GCP.ProjectID, cfg.GCP.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create transaction store")
	}
	defer txStore.Close()

	svc := export.NewService(txStore, export.NewGCSStorage(*bucket), log)
	job := &jobs.ExportJob{
		JobID:     fmt.Sprintf("cli-%d", time.Now().Unix()),
		UserID:    *userID,
		CreatedAt: time.Now().UTC(),
	}

	if err := svc.Handle(ctx, job); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	fmt.Printf("Exported to %s\n", job.GCSURI)
}
