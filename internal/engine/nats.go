package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/Ferrumofomega/wildfire/internal/goes"
)

// DefaultSubject is the NATS subject detection tasks are requested on.
const DefaultSubject = "wildfire.detect"

// workerQueue is the queue group name; NATS delivers each task to exactly
// one subscribed worker.
const workerQueue = "wildfire-workers"

// taskRequest is the wire form of one detection task.
type taskRequest struct {
	Filepaths []string `json:"filepaths"`
}

// taskReply is the wire form of a worker's answer. Error carries the
// malformed-group message; Record is null for negative scans.
type taskReply struct {
	Record *Record `json:"record,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// requester is the slice of *nats.Conn the runner needs; tests substitute
// a fake.
type requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// NATSRunner delegates detection tasks to external worker processes over
// NATS request/reply. Subject and concurrency are opaque configuration;
// the deadline on each request comes from the caller's context.
type NATSRunner struct {
	conn        requester
	subject     string
	maxInFlight int
	logger      *slog.Logger
}

// NewNATSRunner creates a runner that requests tasks on subject.
// maxInFlight < 1 defaults to 16 concurrent outstanding requests.
func NewNATSRunner(conn requester, subject string, maxInFlight int, logger *slog.Logger) *NATSRunner {
	if subject == "" {
		subject = DefaultSubject
	}
	if maxInFlight < 1 {
		maxInFlight = 16
	}
	return &NATSRunner{
		conn:        conn,
		subject:     subject,
		maxInFlight: maxInFlight,
		logger:      logger,
	}
}

// Run sends one request per group and gathers replies in group order.
func (r *NATSRunner) Run(ctx context.Context, groups []goes.ScanGroup) []Result {
	results := make([]Result, len(groups))
	sem := make(chan struct{}, r.maxInFlight)

	var wg sync.WaitGroup
	for idx := range groups {
		select {
		case <-ctx.Done():
			results[idx] = Result{Index: idx, Err: ctx.Err()}
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			record, err := r.request(ctx, groups[idx])
			results[idx] = Result{Index: idx, Record: record, Err: err}
		}(idx)
	}
	wg.Wait()

	return results
}

// request performs one round trip to a worker.
func (r *NATSRunner) request(ctx context.Context, group goes.ScanGroup) (*Record, error) {
	data, err := json.Marshal(taskRequest{Filepaths: group.Filepaths})
	if err != nil {
		return nil, fmt.Errorf("marshal task: %w", err)
	}

	msg, err := r.conn.RequestWithContext(ctx, r.subject, data)
	if err != nil {
		return nil, fmt.Errorf("request scan task: %w", err)
	}

	var reply taskReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("decode task reply: %w", err)
	}
	if reply.Error != "" {
		return nil, errors.New(reply.Error)
	}
	return reply.Record, nil
}

// ServeDetections subscribes to the task subject as part of the worker
// queue group and answers detection requests with the given detector
// until the context is cancelled. Run by cmd/worker.
func ServeDetections(ctx context.Context, conn *nats.Conn, subject string, detector Detector, logger *slog.Logger) error {
	if subject == "" {
		subject = DefaultSubject
	}

	sub, err := conn.QueueSubscribe(subject, workerQueue, func(msg *nats.Msg) {
		respond(ctx, msg, detector, logger)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	defer sub.Unsubscribe() //nolint:errcheck // connection is closing anyway

	logger.Info("worker serving detection tasks", "subject", subject, "queue", workerQueue)
	<-ctx.Done()
	return nil
}

// respond handles one task message.
func respond(ctx context.Context, msg *nats.Msg, detector Detector, logger *slog.Logger) {
	reply(msg, handleTask(ctx, msg.Data, detector), logger)
}

// handleTask decodes and executes one detection task. The group travels
// as raw filepaths and is re-grouped locally so the worker applies the
// same validation as a local run.
func handleTask(ctx context.Context, data []byte, detector Detector) taskReply {
	var req taskRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return taskReply{Error: fmt.Sprintf("decode task: %v", err)}
	}

	groups, invalid := goes.GroupFilepaths(req.Filepaths)
	if len(invalid) > 0 {
		return taskReply{Error: fmt.Sprintf("unrecognized file %s: %v", invalid[0].Filepath, invalid[0].Err)}
	}
	if len(groups) != 1 {
		return taskReply{Error: fmt.Sprintf("task spans %d scan groups, want 1", len(groups))}
	}

	record, err := detector.Detect(ctx, groups[0])
	if err != nil {
		return taskReply{Error: err.Error()}
	}
	return taskReply{Record: record}
}

func reply(msg *nats.Msg, r taskReply, logger *slog.Logger) {
	data, err := json.Marshal(r)
	if err != nil {
		logger.Error("marshal task reply failed", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		logger.Warn("task reply failed", "error", err)
	}
}
