// Package engine distributes scan classification across workers and
// aggregates positive detections. Tasks are stateless and independent;
// one malformed group degrades to "no record for this group" and never
// aborts the batch.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Ferrumofomega/wildfire/internal/goes"
	"github.com/Ferrumofomega/wildfire/internal/observability"
)

// Detector classifies one scan group. It returns a Record when the group
// tests positive, nil when it tests negative, and an error when the group
// is malformed.
type Detector interface {
	Detect(ctx context.Context, group goes.ScanGroup) (*Record, error)
}

// Result is the outcome of one group task. Index refers to the
// caller-supplied group order.
type Result struct {
	Index  int
	Record *Record
	Err    error
}

// Runner executes one detection task per group and returns results in the
// caller-supplied group order, regardless of execution order across
// workers.
type Runner interface {
	Run(ctx context.Context, groups []goes.ScanGroup) []Result
}

// Batch is the aggregated outcome of one search over a file collection.
type Batch struct {
	Satellite string
	Region    string
	Start     time.Time
	End       time.Time
	Records   []Record
	Skipped   int
}

// Engine orchestrates the grouping, fan-out, and aggregation of a
// wildfire search.
type Engine struct {
	runner  Runner
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates an Engine around a Runner.
func New(runner Runner, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		runner:  runner,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once the engine has completed at least one
// batch, or an error describing why the service is not yet ready.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("engine has not completed a batch yet")
	}
	return nil
}

// FindWildfires groups the object keys into scans, classifies every group
// across workers, and returns the positive detections in group order.
// Malformed groups are logged, counted, and excluded; the batch never
// aborts because of one bad input.
func (e *Engine) FindWildfires(ctx context.Context, filepaths []string) (*Batch, error) {
	e.metrics.EngineRunning.Set(1)
	defer e.metrics.EngineRunning.Set(0)

	e.logger.Info("grouping files into scans", "files", len(filepaths))
	groups, invalid := goes.GroupFilepaths(filepaths)
	for _, f := range invalid {
		e.logger.Warn("skipping unrecognized file", "path", f.Filepath, "error", f.Err)
		e.metrics.InvalidFiles.Inc()
	}
	if len(groups) == 0 {
		return nil, errors.New("no scan groups among input files")
	}

	e.logger.Info("processing scans", "scans", len(groups))
	results := e.runner.Run(ctx, groups)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &Batch{
		Satellite: groups[0].Key.Satellite,
		Region:    groups[0].Key.Region,
		Start:     groups[0].Key.StartedAt,
		End:       groups[len(groups)-1].Key.StartedAt,
	}
	for _, res := range results {
		if res.Err != nil {
			key := groups[res.Index].Key
			e.logger.Warn("skipping malformed scan group",
				"satellite", key.Satellite,
				"region", key.Region,
				"started_at", key.StartedAt,
				"error", res.Err,
			)
			e.metrics.ScansSkipped.Inc()
			batch.Skipped++
			continue
		}
		e.metrics.ScansProcessed.Inc()
		if res.Record != nil {
			e.metrics.WildfiresFound.Inc()
			batch.Records = append(batch.Records, *res.Record)
		}
	}

	e.logger.Info("batch complete",
		"scans", len(groups),
		"wildfires", len(batch.Records),
		"skipped", batch.Skipped,
	)
	e.ready.Store(true)
	return batch, nil
}
