package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/quantalabs/analysis-api/config"
	"github.com/quantalabs/analysis-api/handlers"
	"github.com/quantalabs/analysis-api/logging"
	"github.com/quantalabs/analysis-api/metrics"
	"github.com/quantalabs/analysis-api/scheduler"
	"github.com/quantalabs/analysis-api/server"
	"github.com/quantalabs/analysis-api/shutdown"
	"github.com/quantalabs/analysis-api/validation"
)

// version is reported by the health probes.
const version = "1.0.0"

func main() {
	// Load .env if present; real environment variables win either way.
	if err := godotenv.Load(); err != nil {
		logging.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	logging.Init(cfg)

	coordinator := shutdown.NewCoordinator()
	registry := metrics.NewRegistry()
	validator := validation.NewValidator()
	handler := handlers.New(coordinator, validator, version)

	srv := server.New(cfg, coordinator, registry, handler)

	monitor := scheduler.NewMonitor(coordinator)
	if err := monitor.Start(); err != nil {
		logging.Error("Failed to start runtime monitor", "error", err)
		os.Exit(1)
	}

	// The signal handler only feeds this channel; the shutdown transition is
	// driven synchronously from here.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	sig := <-quit
	logging.Info("Received shutdown signal", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()

	err = srv.Shutdown(ctx)
	monitor.Stop()

	if err != nil {
		logging.Error("Shutdown finished with error", "error", err)
		os.Exit(1)
	}

	logging.Info("Server exited gracefully")
}
