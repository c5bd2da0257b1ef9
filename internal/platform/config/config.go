// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, job engine, scheduler) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// ScannerConfig controls the filesystem walk during library sync.
type ScannerConfig struct {
	// Parallelism bounds the number of directories read concurrently.
	Parallelism int `env:"SCANNER_PARALLELISM" envDefault:"1"`
}

// ProcessingConfig controls derived-data job worker pool sizes.
type ProcessingConfig struct {
	MetadataParallelism   int  `env:"PROCESSING_METADATA_PARALLELISM"   envDefault:"4"`
	ThumbnailParallelism  int  `env:"PROCESSING_THUMBNAIL_PARALLELISM"  envDefault:"4"`
	SimilarityParallelism int  `env:"PROCESSING_SIMILARITY_PARALLELISM" envDefault:"4"`
	RunScheduler          bool `env:"PROCESSING_RUN_SCHEDULER"          envDefault:"true"`
}

// StorageConfig locates on-disk derived artifacts (thumbnails).
type StorageConfig struct {
	ThumbnailPath string `env:"STORAGE_THUMBNAIL_PATH" envDefault:"./data/thumbnails"`
}

// DuplicateConfig tunes the perceptual-similarity thresholds used by the
// duplicate-detection job.
type DuplicateConfig struct {
	BaseSimilarity      float64 `env:"DUPLICATE_BASE_SIMILARITY"       envDefault:"0.68"`
	CrossTypeSimilarity float64 `env:"DUPLICATE_CROSS_TYPE_SIMILARITY" envDefault:"0.90"`
}

// Config holds all runtime configuration for the booru server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	Scanner    ScannerConfig
	Processing ProcessingConfig
	Storage    StorageConfig
	Duplicate  DuplicateConfig

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.Scanner.Parallelism < 1 {
		cfg.Scanner.Parallelism = 1
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
