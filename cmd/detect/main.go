// Command detect runs a batch wildfire search over a collection of GOES
// level-1b object keys and persists the scans that test positive.
//
// Usage:
//
//	go run ./cmd/detect -keys-file keys.txt
//	go run ./cmd/detect ABI-L1b-RadM/2019/300/20/OR_ABI-L1b-RadM1-M6C07_G17_s20193002048275_e20193002048332_c20193002048405.nc ...
//
// Keys may come from a file (one per line, blank lines and #-comments
// ignored), from arguments, or both. Worker count, runner mode, and
// storage locations come from config; see internal/config.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
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
		slog.Error("wildfire search failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	keysFile := flag.String("keys-file", "", "file containing object keys, one per line")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	filepaths, err := collectKeys(*keysFile, flag.Args())
	if err != nil {
		return err
	}
	if len(filepaths) == 0 {
		return errors.New("no object keys given; pass -keys-file or arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, cleanup, err := buildRunner(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := engine.New(runner, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, logger)
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

	batch, err := eng.FindWildfires(ctx, filepaths)
	if err != nil {
		return err
	}

	path, err := engine.WriteRecords(cfg.PersistDir, batch.Satellite, batch.Region, batch.Start, batch.End, batch.Records)
	if err != nil {
		return err
	}
	if path == "" {
		logger.Info("no wildfires found")
		return nil
	}
	logger.Info("persisted wildfires", "count", len(batch.Records), "path", path)
	return nil
}

// buildRunner wires the configured execution mode. The cleanup function
// releases mode-specific resources.
func buildRunner(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (engine.Runner, func(), error) {
	switch cfg.Runner {
	case config.RunnerNATS:
		conn, err := nats.Connect(cfg.NATSURL, nats.Name("wildfire-detect"))
		if err != nil {
			return nil, nil, fmt.Errorf("connect nats %s: %w", cfg.NATSURL, err)
		}
		runner := engine.NewNATSRunner(conn, cfg.NATSSubject, cfg.NATSMaxInFlight, logger)
		return runner, conn.Close, nil
	default:
		det := buildDetector(cfg, logger, metrics)
		runner := engine.NewLocalRunner(det, cfg.Workers, cfg.TaskTimeout, logger)
		return runner, func() {}, nil
	}
}

// buildDetector wires the scan pipeline: archive fetcher, raster reader,
// loader, threshold model.
func buildDetector(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *detector.ScanDetector {
	fetcher := noaa.NewClient(cfg.ArchiveBaseURL, cfg.FetchTimeout, logger, metrics)
	loader := goes.NewLoader(fetcher, netcdf.NewReader(), cfg.LocalDir, logger)
	return detector.New(loader, logger, metrics)
}

// collectKeys merges keys from the optional list file and the arguments.
func collectKeys(keysFile string, args []string) ([]string, error) {
	keys := make([]string, 0, len(args))

	if keysFile != "" {
		f, err := os.Open(keysFile)
		if err != nil {
			return nil, fmt.Errorf("open keys file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			keys = append(keys, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read keys file: %w", err)
		}
	}

	return append(keys, args...), nil
}
