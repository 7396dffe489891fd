// Package detector ties scan assembly and the threshold model into the
// single task the search engine fans out: classify one scan group.
package detector

import (
	"context"
	"log/slog"
	"time"

	"github.com/Ferrumofomega/wildfire/internal/engine"
	"github.com/Ferrumofomega/wildfire/internal/firemodel"
	"github.com/Ferrumofomega/wildfire/internal/goes"
	"github.com/Ferrumofomega/wildfire/internal/observability"
)

// ScanLoader assembles a complete scan from a group of object keys.
// Implemented by goes.Loader.
type ScanLoader interface {
	LoadScan(ctx context.Context, filepaths []string) (*goes.Scan, error)
}

// ScanDetector loads a scan group, rescales it to the common grid, and
// runs the threshold model. It implements engine.Detector.
type ScanDetector struct {
	loader       ScanLoader
	resampleOpts []goes.ResampleOption
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// Option configures a ScanDetector.
type Option func(*ScanDetector)

// WithResampleOptions forwards options, such as a pixel-quality filter,
// to the spatial resampler.
func WithResampleOptions(opts ...goes.ResampleOption) Option {
	return func(d *ScanDetector) {
		d.resampleOpts = append(d.resampleOpts, opts...)
	}
}

// New creates a ScanDetector.
func New(loader ScanLoader, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *ScanDetector {
	d := &ScanDetector{
		loader:  loader,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect classifies one scan group. A positive scan yields its identifying
// record; a negative scan yields nil; a group that cannot be assembled
// yields a malformed-scan error for the engine to recover.
func (d *ScanDetector) Detect(ctx context.Context, group goes.ScanGroup) (*engine.Record, error) {
	start := time.Now()
	defer func() {
		d.metrics.ScanProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	scan, err := d.loader.LoadScan(ctx, group.Filepaths)
	if err != nil {
		return nil, err
	}

	rescaled, err := goes.RescaleTo2km(scan, d.resampleOpts...)
	if err != nil {
		return nil, err
	}

	features, err := firemodel.Features(rescaled)
	if err != nil {
		return nil, err
	}

	prediction := firemodel.Predict(features)
	if !prediction.Any() {
		return nil, nil
	}

	d.logger.Info("wildfire detected",
		"satellite", scan.Satellite,
		"region", scan.Region,
		"started_at", scan.StartedAt,
		"fire_pixels", prediction.Count(),
	)
	record := engine.NewRecord(scan.Satellite, scan.Region, scan.StartedAt)
	return &record, nil
}
