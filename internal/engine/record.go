package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// wildfireFilename is the persisted result filename pattern. start, end
// and created use filenameTimeFormat.
const wildfireFilename = "wildfires_%s_%s_s%s_e%s_c%s.json"

// filenameTimeFormat is the second-precision timestamp used in filenames.
const filenameTimeFormat = "2006-01-02T15:04:05"

// Record is the minimal identifying key of a positively-classified scan
// group — enough to re-derive the 16 object keys that comprise it.
type Record struct {
	ScanTimeUTC string `json:"scan_time_utc"`
	Region      string `json:"region"`
	Satellite   string `json:"satellite"`
}

// NewRecord builds a Record for a scan identity.
func NewRecord(satellite, region string, scanTime time.Time) Record {
	return Record{
		ScanTimeUTC: FormatScanTime(scanTime),
		Region:      region,
		Satellite:   satellite,
	}
}

// FormatScanTime renders a scan start time with microsecond precision,
// the microseconds appended directly after the seconds with no separator.
func FormatScanTime(t time.Time) string {
	t = t.UTC()
	return t.Format(filenameTimeFormat) + fmt.Sprintf("%06d", t.Nanosecond()/1000)
}

// WriteRecords persists a batch's positive detections as a JSON object
// mapping stringified indexes (from "0") to records. No file is written
// when the batch found nothing; the returned path is empty in that case.
func WriteRecords(persistDir, satellite, region string, start, end time.Time, records []Record) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	indexed := make(map[string]Record, len(records))
	for i, r := range records {
		indexed[strconv.Itoa(i)] = r
	}
	data, err := json.Marshal(indexed)
	if err != nil {
		return "", fmt.Errorf("marshal wildfire records: %w", err)
	}

	name := fmt.Sprintf(wildfireFilename,
		satellite,
		region,
		start.UTC().Format(filenameTimeFormat),
		end.UTC().Format(filenameTimeFormat),
		clock.Now().UTC().Format(filenameTimeFormat),
	)
	path := filepath.Join(persistDir, name)

	if err := os.MkdirAll(persistDir, 0o755); err != nil {
		return "", fmt.Errorf("create persist directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write wildfire records: %w", err)
	}
	return path, nil
}
