// Command finsights-seed prepares a database without starting the API:
// it generates the synthetic dataset when the CSV is absent and bulk
// loads it into SQLite. Useful for CI fixtures and local resets.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"finsights/internal/cli"
	"finsights/internal/generate"
	applog "finsights/internal/log"
	"finsights/internal/seed"
)

func main() {
	regenerate := flag.Bool("regenerate", false, "rewrite the dataset CSV even if it exists")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(applog.ComponentSeed)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := os.Stat(cfg.DatasetCSVPath); *regenerate || errors.Is(err, os.ErrNotExist) {
		gen := generate.New(cfg.DatasetSeed, time.Now())
		txs := gen.Dataset(cfg.DatasetSize)
		if err := generate.WriteCSV(cfg.DatasetCSVPath, txs); err != nil {
			logger.ErrorContext(ctx, "Dataset generation failed", applog.FieldError, err)
			os.Exit(1)
		}
		logger.InfoContext(ctx, "Dataset written",
			"path", cfg.DatasetCSVPath, applog.FieldRows, len(txs), "seed", cfg.DatasetSeed)
	}

	if err := seed.Run(ctx, repo, cfg.DatasetCSVPath); err != nil {
		logger.ErrorContext(ctx, "Seeding failed", applog.FieldError, err)
		os.Exit(1)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Row count failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Store ready", applog.FieldRows, count)
}
