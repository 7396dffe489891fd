package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatScanTime(t *testing.T) {
	t.Run("microseconds append without separator", func(t *testing.T) {
		scanTime := time.Date(2019, time.October, 27, 20, 48, 27, 500_000_000, time.UTC)
		assert.Equal(t, "2019-10-27T20:48:27500000", FormatScanTime(scanTime))
	})

	t.Run("zero microseconds are padded", func(t *testing.T) {
		scanTime := time.Date(2019, time.October, 27, 20, 48, 27, 0, time.UTC)
		assert.Equal(t, "2019-10-27T20:48:27000000", FormatScanTime(scanTime))
	})

	t.Run("non-UTC input is normalized", func(t *testing.T) {
		loc := time.FixedZone("PDT", -7*60*60)
		scanTime := time.Date(2019, time.October, 27, 13, 48, 27, 0, loc)
		assert.Equal(t, "2019-10-27T20:48:27000000", FormatScanTime(scanTime))
	})
}

func TestWriteRecords(t *testing.T) {
	start := time.Date(2019, time.October, 27, 20, 0, 0, 0, time.UTC)
	end := time.Date(2019, time.October, 27, 21, 0, 0, 0, time.UTC)
	created := time.Date(2019, time.October, 28, 9, 30, 0, 0, time.UTC)

	t.Run("persists indexed records under a timestamped name", func(t *testing.T) {
		SetClock(clockwork.NewFakeClockAt(created))
		defer SetClock(nil)

		dir := t.TempDir()
		records := []Record{
			NewRecord("noaa-goes17", "M1", start),
			NewRecord("noaa-goes17", "M1", start.Add(time.Minute)),
		}

		path, err := WriteRecords(dir, "noaa-goes17", "M1", start, end, records)
		require.NoError(t, err)

		assert.Equal(t,
			"wildfires_noaa-goes17_M1_s2019-10-27T20:00:00_e2019-10-27T21:00:00_c2019-10-28T09:30:00.json",
			filepath.Base(path),
		)

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var decoded map[string]Record
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, records[0], decoded["0"])
		assert.Equal(t, records[1], decoded["1"])
	})

	t.Run("no file for an empty batch", func(t *testing.T) {
		dir := t.TempDir()

		path, err := WriteRecords(dir, "noaa-goes17", "M1", start, end, nil)
		require.NoError(t, err)
		assert.Empty(t, path)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("creates the persist directory", func(t *testing.T) {
		SetClock(clockwork.NewFakeClockAt(created))
		defer SetClock(nil)

		dir := filepath.Join(t.TempDir(), "out", "wildfires")
		records := []Record{NewRecord("noaa-goes16", "F", start)}

		path, err := WriteRecords(dir, "noaa-goes16", "F", start, end, records)
		require.NoError(t, err)
		assert.FileExists(t, path)
	})
}

func TestNewRecord(t *testing.T) {
	scanTime := time.Date(2019, time.October, 27, 20, 48, 27, 500_000_000, time.UTC)
	r := NewRecord("noaa-goes17", "M1", scanTime)

	assert.Equal(t, Record{
		ScanTimeUTC: "2019-10-27T20:48:27500000",
		Region:      "M1",
		Satellite:   "noaa-goes17",
	}, r)
}
