// Command worker serves wildfire detection tasks over NATS for batches
// run with runner=nats. Start as many workers as the batch should fan
// out across; NATS queue groups spread tasks between them.
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

	"github.com/nats-io/nats.go"

	httpadapter "github.com/Ferrumofomega/wildfire/internal/adapter/http"
	"github.com/Ferrumofomega/wildfire/internal/adapter/netcdf"
	"github.com/Ferrumofomega/wildfire/internal/adapter/noaa"
	"github.com/Ferrumofomega/wildfire/internal/config"
	"github.com/Ferrumofomega/wildfire/internal/detector"
	"github.com/Ferrumofomega/wildfire/internal/engine"
	"github.com/Ferrumofomega/wildfire/internal/goes"
	"github.com/Ferrumofomega/wildfire/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	conn, err := nats.Connect(cfg.NATSURL, nats.Name("wildfire-worker"))
	if err != nil {
		return fmt.Errorf("connect nats %s: %w", cfg.NATSURL, err)
	}
	defer conn.Close()

	fetcher := noaa.NewClient(cfg.ArchiveBaseURL, cfg.FetchTimeout, logger, metrics)
	loader := goes.NewLoader(fetcher, netcdf.NewReader(), cfg.LocalDir, logger)
	det := detector.New(loader, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpadapter.NewServer(cfg.HTTPAddr, alwaysReady{}, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}()

	return engine.ServeDetections(ctx, conn, cfg.NATSSubject, det, logger)
}

// alwaysReady satisfies the readiness check; a worker that connected to
// NATS is ready.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }
