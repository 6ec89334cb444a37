package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ballsdex/merchant-service/internal/config"
	"github.com/ballsdex/merchant-service/internal/database"
	"github.com/ballsdex/merchant-service/internal/database/postgres"
	"github.com/ballsdex/merchant-service/internal/database/schema"
	"github.com/ballsdex/merchant-service/internal/merchant"
	"github.com/ballsdex/merchant-service/internal/scheduler"
	"github.com/ballsdex/merchant-service/internal/server"
	"github.com/ballsdex/merchant-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	pool, err := database.NewPool(
		cfg.GetDBConnString(),
		database.DefaultMaxConnections,
		database.DefaultMaxIdleTime,
		database.DefaultMaxLifetime,
	)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := schema.Apply(context.Background(), pool); err != nil {
		slog.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}

	repo := postgres.NewMerchantRepository(pool)
	merchantService := merchant.NewService(repo)

	// Background rotation refresh keeps the offering current even with no
	// incoming requests.
	workerPool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	workerPool.Start()

	sched := scheduler.New(workerPool)
	sched.Schedule(cfg.RotationRefreshInterval, worker.NewRotationJob(merchantService))

	srv := server.NewServer(cfg.Port, cfg.APIKey, pool, merchantService)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("Shutting down", "signal", sig.String())
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	sched.Stop()
	workerPool.Stop()

	slog.Info("Shutdown complete")
}
