// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Api is the entry point for the booru HTTP server.

It ingests configured libraries, runs derived-data jobs over the catalog
(metadata, perceptual hashing, thumbnails, duplicate detection), and serves a
thin HTTP API over the resulting data.

Usage:

	go run cmd/api/main.go [flags]

The flags/environment variables are documented in [config.Config].

Startup Sequence:

 1. Logger: Initialize structured JSON logging (slog).
 2. Config: Load and validate environment variables.
 3. Storage: Establish the PostgreSQL connection pool.
 4. Migration: Run idempotent schema updates.
 5. Wiring: Inject dependencies into domain services/handlers.
 6. Jobs: Register derived-data jobs and start the scheduler.
 7. Server: Bind HTTP listener and handle graceful shutdown.

No business logic lives here. This file is strictly for orchestration and wiring.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/booruoss/booru/internal/api"
	"github.com/booruoss/booru/internal/core/audit"
	"github.com/booruoss/booru/internal/core/duplicate"
	"github.com/booruoss/booru/internal/core/excludedfile"
	"github.com/booruoss/booru/internal/core/library"
	"github.com/booruoss/booru/internal/core/post"
	"github.com/booruoss/booru/internal/core/tag"
	"github.com/booruoss/booru/internal/ingest"
	"github.com/booruoss/booru/internal/jobs"
	"github.com/booruoss/booru/internal/platform/config"
	"github.com/booruoss/booru/internal/platform/constants"
	"github.com/booruoss/booru/internal/platform/migration"
	pgstore "github.com/booruoss/booru/internal/platform/postgres"
)

// scheduledJobPollInterval is how often the scheduler re-reads enabled
// ScheduledJob rows to check for due work.
const scheduledJobPollInterval = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("application_startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// # 1. Logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(slog.String("app", "booru"))
	slog.SetDefault(log)
	log.Info("booru_service_initializing")

	// # 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if cfg.Debug {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})).With(slog.String("app", "booru"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded", slog.String("environment", cfg.Environment), slog.String("port", cfg.ServerPort))

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 3. PostgreSQL
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// # 4. Migrations
	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// # 5. Repositories
	libraryRepo := library.NewPostgresRepository(pool)
	postRepo := post.NewPostgresRepository(pool)
	tagRepo := tag.NewPostgresRepository(pool)
	duplicateRepo := duplicate.NewPostgresRepository(pool)
	excludedRepo := excludedfile.NewPostgresRepository(pool)
	auditRepo := audit.NewPostgresRepository(pool)
	jobStore := jobs.NewPostgresStore(pool)

	// # 6. Domain Services
	librarySvc := library.NewService(libraryRepo, log)
	tagSvc := tag.NewService(tagRepo, log)
	resolver := duplicate.NewResolver(duplicateRepo, postRepo, libraryRepo, excludedRepo, pool, log)
	synchronizer := ingest.NewSynchronizer(postRepo, excludedRepo, log, cfg.Scanner.Parallelism)

	// # 7. Job Engine & Scheduler
	engine := jobs.NewEngine(jobStore, log)
	jobs.RegisterDerivedDataJobs(engine, jobs.Dependencies{
		Libraries:    libraryRepo,
		Posts:        postRepo,
		Tags:         tagSvc,
		Duplicates:   duplicateRepo,
		Excluded:     excludedRepo,
		Synchronizer: synchronizer,

		ThumbnailRoot:   cfg.Storage.ThumbnailPath,
		ThumbnailMaxDim: 400,

		MetadataParallelism:   cfg.Processing.MetadataParallelism,
		ThumbnailParallelism:  cfg.Processing.ThumbnailParallelism,
		SimilarityParallelism: cfg.Processing.SimilarityParallelism,

		BaseSimilarity:      cfg.Duplicate.BaseSimilarity,
		CrossTypeSimilarity: cfg.Duplicate.CrossTypeSimilarity,

		Logger: log,
	})

	scheduler := jobs.NewScheduler(jobStore, engine, log)
	if cfg.Processing.RunScheduler {
		scheduler.Start(scheduledJobPollInterval)
		log.Info("scheduler_started", slog.Duration("poll_interval", scheduledJobPollInterval))
	} else {
		log.Info("scheduler_disabled")
	}

	// # 8. Health Wiring
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error { return pgstore.Ping(context.Background(), pool) },
	}, log)

	// # 9. HTTP Handlers
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Library:   library.NewHandler(librarySvc),
		Tag:       tag.NewHandler(tagSvc),
		Duplicate: duplicate.NewHandler(resolver),
		Jobs:      jobs.NewHandler(engine),
		Audit:     audit.NewHandler(auditRepo),
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log, handlers)

	// # 10. Lifecycle Handling
	shutdownErr := make(chan error, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownErr <- fmt.Errorf("http_server_crash: %w", err)
		}
	}()

	log.Info("booru_api_running", slog.String("port", cfg.ServerPort))

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-shutdownErr:
		return err
	}

	appCancel()
	if cfg.Processing.RunScheduler {
		scheduler.Stop()
	}

	log.Info("shutting_down_api_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("server_shutdown_failed: %w", err)
	}

	log.Info("graceful_shutdown_complete")
	return nil
}
