package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"finsights/internal/ai"
	"finsights/internal/cli"
	apphttp "finsights/internal/http"
	"finsights/internal/launch"
	applog "finsights/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	pub := cli.InitPublisher(logger, cfg)
	if pub != nil {
		defer pub.Close()
	}

	seq := launch.NewSequencer(pub)

	// Seed before serving so the first request already sees data. The
	// dataset file is generated on the fly when absent.
	seedCtx, seedCancel := context.WithTimeout(context.Background(), time.Minute)
	err := seq.Seed(seedCtx, repo, cfg.DatasetCSVPath, cfg.DatasetSize, cfg.DatasetSeed)
	seedCancel()
	if err != nil {
		logger.ErrorContext(context.Background(), "Seeding failed", applog.FieldError, err)
		os.Exit(1)
	}

	generator := ai.NewClient(cfg.AIModel)
	srv := apphttp.NewServer(":"+cfg.Port, repo, generator, seq, pub, cfg.StoreTimeout, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(context.Background(), "Server shutdown error", applog.FieldError, err)
		}
	})

	if err := seq.MarkAPIUp(context.Background()); err != nil {
		logger.ErrorContext(context.Background(), "Launch transition failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger.InfoContext(context.Background(), "Starting finsights server",
		"port", cfg.Port, applog.FieldState, string(seq.State()))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.ErrorContext(context.Background(), "Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.InfoContext(context.Background(), "Server stopped gracefully")
}
