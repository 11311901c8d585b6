package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/spendwise/internal/analytics"
	"github.com/dvloznov/spendwise/internal/api/handlers"
	"github.com/dvloznov/spendwise/internal/auth"
	"github.com/dvloznov/spendwise/internal/config"
	"github.com/dvloznov/spendwise/internal/export"
	"github.com/dvloznov/spendwise/internal/extract"
	"github.com/dvloznov/spendwise/internal/jobs/inmemory"
	"github.com/dvloznov/spendwise/internal/logger"
	"github.com/dvloznov/spendwise/internal/store"
	bqstore "github.com/dvloznov/spendwise/internal/store/bigquery"
	"github.com/dvloznov/spendwise/internal/store/memory"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (optional)")
		inMemory   = flag.Bool("in-memory", false, "use in-memory stores instead of BigQuery (local dev)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logger.NewWithLevel(cfg.Log.Level)

	ctx := context.Background()

	var (
		txStore   store.TransactionStore
		userStore store.UserStore
	)
	if *inMemory {
		log.Warn().Msg("Using in-memory stores - data will not survive restarts")
		txStore = memory.NewStore()
		userStore = memory.NewUsers()
	} else {
		bq, err := bqstore.NewStore(ctx, cfg.GCP.ProjectID, cfg.GCP.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create transaction store")
		}
		defer bq.Close()

		users, err := bqstore.NewUsers(ctx, cfg.GCP.ProjectID, cfg.GCP.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create user store")
		}
		defer users.Close()

		txStore = bq
		userStore = users
	}

	// Extraction engine
	generator := extract.NewGeminiGenerator(cfg.Gemini.Model)
	engine := extract.NewEngine(generator, log)

	// Auth
	issuer := auth.NewTokenIssuer(
		cfg.Auth.JWTSecret,
		cfg.Auth.RefreshSecret,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)
	verifier := auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	authSvc := auth.NewService(verifier, issuer, userStore, log)

	// Background export jobs
	jobStore := inmemory.NewJobStore()
	jobQueue := inmemory.NewQueue(jobStore, 100, log)
	exportSvc := export.NewService(txStore, export.NewGCSStorage(cfg.GCP.Bucket), log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting export job worker")
		if err := jobQueue.Start(workerCtx, exportSvc.HandleJob); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Handlers
	authHandler := handlers.NewAuthHandler(authSvc, userStore, log)
	txHandler := handlers.NewTransactionsHandler(txStore, engine, log)
	analyticsHandler := handlers.NewAnalyticsHandler(analytics.NewService(txStore, log), log)
	jobsHandler := handlers.NewJobsHandler(jobQueue, jobStore, log)

	handler := handlers.Router(authHandler, txHandler, analyticsHandler, jobsHandler, authSvc, log)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
