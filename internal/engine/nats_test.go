package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ferrumofomega/wildfire/internal/goes"
)

// fakeRequester answers requests in-process, standing in for a worker on
// the other side of a NATS subject.
type fakeRequester struct {
	handle func(taskRequest) taskReply
	err    error
}

func (f *fakeRequester) RequestWithContext(_ context.Context, _ string, data []byte) (*nats.Msg, error) {
	if f.err != nil {
		return nil, f.err
	}
	var req taskRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	out, err := json.Marshal(f.handle(req))
	if err != nil {
		return nil, err
	}
	return &nats.Msg{Data: out}, nil
}

func TestNATSRunner(t *testing.T) {
	groups := []goes.ScanGroup{
		{
			Key:       goes.GroupKey{Satellite: "noaa-goes17", Region: "M1", StartedAt: time.Date(2019, 10, 27, 20, 0, 0, 0, time.UTC)},
			Filepaths: scanFiles("17", "20193002000000"),
		},
		{
			Key:       goes.GroupKey{Satellite: "noaa-goes17", Region: "M1", StartedAt: time.Date(2019, 10, 27, 20, 10, 0, 0, time.UTC)},
			Filepaths: scanFiles("17", "20193002010000"),
		},
	}

	t.Run("gathers worker replies in group order", func(t *testing.T) {
		conn := &fakeRequester{handle: func(req taskRequest) taskReply {
			regrouped, invalid := goes.GroupFilepaths(req.Filepaths)
			if len(invalid) > 0 || len(regrouped) != 1 {
				return taskReply{Error: "bad task"}
			}
			key := regrouped[0].Key
			r := NewRecord(key.Satellite, key.Region, key.StartedAt)
			return taskReply{Record: &r}
		}}

		runner := NewNATSRunner(conn, "", 0, testLogger())
		results := runner.Run(context.Background(), groups)

		require.Len(t, results, 2)
		for i, res := range results {
			require.NoError(t, res.Err)
			require.NotNil(t, res.Record)
			assert.Equal(t, i, res.Index)
			assert.Equal(t, FormatScanTime(groups[i].Key.StartedAt), res.Record.ScanTimeUTC)
		}
	})

	t.Run("worker error surfaces as a per-task error", func(t *testing.T) {
		conn := &fakeRequester{handle: func(taskRequest) taskReply {
			return taskReply{Error: "malformed scan: band 4: object not found"}
		}}

		runner := NewNATSRunner(conn, DefaultSubject, 4, testLogger())
		results := runner.Run(context.Background(), groups[:1])

		require.Error(t, results[0].Err)
		assert.Contains(t, results[0].Err.Error(), "object not found")
	})

	t.Run("negative scan is a nil record", func(t *testing.T) {
		conn := &fakeRequester{handle: func(taskRequest) taskReply {
			return taskReply{}
		}}

		runner := NewNATSRunner(conn, DefaultSubject, 4, testLogger())
		results := runner.Run(context.Background(), groups[:1])

		require.NoError(t, results[0].Err)
		assert.Nil(t, results[0].Record)
	})

	t.Run("transport failure is a per-task error", func(t *testing.T) {
		conn := &fakeRequester{err: errors.New("nats: timeout")}

		runner := NewNATSRunner(conn, DefaultSubject, 4, testLogger())
		results := runner.Run(context.Background(), groups)

		for _, res := range results {
			require.Error(t, res.Err)
		}
	})
}

func TestHandleTask(t *testing.T) {
	detector := funcDetector(positiveDetector)

	marshalTask := func(t *testing.T, filepaths []string) []byte {
		t.Helper()
		data, err := json.Marshal(taskRequest{Filepaths: filepaths})
		require.NoError(t, err)
		return data
	}

	t.Run("answers a positive scan with a record", func(t *testing.T) {
		data := marshalTask(t, scanFiles("17", "20193002000000"))

		reply := handleTask(context.Background(), data, detector)
		assert.Empty(t, reply.Error)
		require.NotNil(t, reply.Record)
		assert.Equal(t, "2019-10-27T20:00:00000000", reply.Record.ScanTimeUTC)
	})

	t.Run("detector error travels in the reply", func(t *testing.T) {
		failing := funcDetector(func(context.Context, goes.ScanGroup) (*Record, error) {
			return nil, errors.New("malformed scan: band 7 unreadable")
		})

		reply := handleTask(context.Background(), marshalTask(t, scanFiles("17", "20193002000000")), failing)
		assert.Contains(t, reply.Error, "band 7 unreadable")
		assert.Nil(t, reply.Record)
	})

	t.Run("task spanning two scans is rejected", func(t *testing.T) {
		mixed := append(scanFiles("17", "20193002000000"), scanFiles("17", "20193002010000")...)

		reply := handleTask(context.Background(), marshalTask(t, mixed), detector)
		assert.Contains(t, reply.Error, "spans 2 scan groups")
	})

	t.Run("unrecognized file is rejected", func(t *testing.T) {
		files := append(scanFiles("17", "20193002000000"), "junk.txt")

		reply := handleTask(context.Background(), marshalTask(t, files), detector)
		assert.Contains(t, reply.Error, "unrecognized file")
	})

	t.Run("undecodable payload is rejected", func(t *testing.T) {
		reply := handleTask(context.Background(), []byte("not json"), detector)
		assert.Contains(t, reply.Error, "decode task")
	})
}
