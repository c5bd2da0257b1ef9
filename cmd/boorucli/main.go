// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Boorucli is the operator CLI for the booru service: managing libraries,
running a foreground sync with a live progress bar, and controlling derived
-data jobs, all through the same service layer the HTTP API uses.

Usage:

	boorucli library add --name <name> --path <path>
	boorucli library list
	boorucli library remove <id>
	boorucli sync <library-id>
	boorucli jobs list
	boorucli jobs start <key>
	boorucli jobs cancel <execution-id>
	boorucli jobs history
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/booruoss/booru/internal/core/duplicate"
	"github.com/booruoss/booru/internal/core/excludedfile"
	"github.com/booruoss/booru/internal/core/library"
	"github.com/booruoss/booru/internal/core/post"
	"github.com/booruoss/booru/internal/core/tag"
	"github.com/booruoss/booru/internal/ingest"
	"github.com/booruoss/booru/internal/jobs"
	"github.com/booruoss/booru/internal/platform/config"
	pgstore "github.com/booruoss/booru/internal/platform/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	version = "dev"
	commit  = "none"
)

// cliDeps bundles the repositories and services every subcommand needs.
// Built once per invocation from [config.Config] so each command stays a
// thin wrapper over the same layer the HTTP API uses.
type cliDeps struct {
	pool *pgxpool.Pool

	libraries *library.Service
	resolver  *duplicate.Resolver
	engine    *jobs.Engine
	sync      *ingest.Synchronizer
}

func newDeps(ctx context.Context) (*cliDeps, error) {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	libraryRepo := library.NewPostgresRepository(pool)
	postRepo := post.NewPostgresRepository(pool)
	tagRepo := tag.NewPostgresRepository(pool)
	duplicateRepo := duplicate.NewPostgresRepository(pool)
	excludedRepo := excludedfile.NewPostgresRepository(pool)
	jobStore := jobs.NewPostgresStore(pool)

	tagSvc := tag.NewService(tagRepo, log)
	synchronizer := ingest.NewSynchronizer(postRepo, excludedRepo, log, cfg.Scanner.Parallelism)

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

	return &cliDeps{
		pool:      pool,
		libraries: library.NewService(libraryRepo, log),
		resolver:  duplicate.NewResolver(duplicateRepo, postRepo, libraryRepo, excludedRepo, pool, log),
		engine:    engine,
		sync:      synchronizer,
	}, nil
}

func (d *cliDeps) Close() {
	d.pool.Close()
}

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:     "boorucli",
		Short:   "Operator CLI for the booru indexer",
		Version: version + " (" + commit + ")",
	}

	root.AddCommand(newLibraryCmd())
	root.AddCommand(newSyncCmd())
	root.AddCommand(newJobsCmd())

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
