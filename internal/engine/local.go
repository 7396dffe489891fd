package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Ferrumofomega/wildfire/internal/goes"
)

// LocalRunner fans detection tasks out across a bounded pool of
// goroutines in this process. Tasks share no mutable state; results are
// written into their caller-order slots, so gather order is stable even
// though execution order is not.
type LocalRunner struct {
	detector    Detector
	workers     int
	taskTimeout time.Duration
	logger      *slog.Logger
}

// NewLocalRunner creates a LocalRunner. workers < 1 defaults to the CPU
// count; taskTimeout <= 0 disables the per-task deadline.
func NewLocalRunner(detector Detector, workers int, taskTimeout time.Duration, logger *slog.Logger) *LocalRunner {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &LocalRunner{
		detector:    detector,
		workers:     workers,
		taskTimeout: taskTimeout,
		logger:      logger,
	}
}

// Run classifies every group and returns results indexed by group order.
func (r *LocalRunner) Run(ctx context.Context, groups []goes.ScanGroup) []Result {
	results := make([]Result, len(groups))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = Result{Index: idx}
				results[idx].Record, results[idx].Err = r.runTask(ctx, groups[idx])
			}
		}()
	}

feed:
	for idx := range groups {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// runTask classifies one group under the per-task deadline. A panicking
// task degrades to a per-task error so one poisoned group cannot take the
// batch down.
func (r *LocalRunner) runTask(ctx context.Context, group goes.ScanGroup) (record *Record, err error) {
	if r.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.taskTimeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("scan task panicked", "started_at", group.Key.StartedAt, "panic", rec)
			record, err = nil, fmt.Errorf("scan task panicked: %v", rec)
		}
	}()

	return r.detector.Detect(ctx, group)
}
