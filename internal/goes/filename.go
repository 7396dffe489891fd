package goes

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// filenameRe matches ABI level-1b object keys, e.g.
// OR_ABI-L1b-RadM1-M6C14_G17_s20193002048275_e20193002048332_c20193002048405.nc.
// The region token directly follows "Rad"; the scan-mode token (M3/M6) is
// ignored for identification purposes.
var filenameRe = regexp.MustCompile(
	`OR_ABI-L1b-Rad(F|C|M1|M2)-M\dC(\d{2})_G(\d{2})_s(\d{14})_e\d{14}_c\d{14}\.nc$`,
)

// satelliteBuckets maps the filename satellite token to the NOAA archive
// bucket name used everywhere downstream.
var satelliteBuckets = map[string]string{
	"16": "noaa-goes16",
	"17": "noaa-goes17",
}

// FileID identifies one band file within the archive.
type FileID struct {
	Satellite string // noaa-goes16 or noaa-goes17
	Region    string // F, C, M1, or M2
	Channel   int    // 1–16
	StartedAt time.Time
	Filepath  string // the original object key
}

// Key returns the grouping key shared by the 16 files of one scan.
func (f FileID) Key() GroupKey {
	return GroupKey{Satellite: f.Satellite, Region: f.Region, StartedAt: f.StartedAt}
}

// ParseFilename extracts satellite, region, channel, and scan start time
// from an ABI level-1b object key. An unsupported satellite or region
// token is an error for that single file.
func ParseFilename(filepath string) (FileID, error) {
	matches := filenameRe.FindStringSubmatch(filepath)
	if matches == nil {
		return FileID{}, fmt.Errorf("parse filename %q: not an ABI L1b radiance key", filepath)
	}

	channel, err := strconv.Atoi(matches[2])
	if err != nil || channel < 1 || channel > 16 {
		return FileID{}, fmt.Errorf("parse filename %q: channel %q out of range", filepath, matches[2])
	}

	satellite, ok := satelliteBuckets[matches[3]]
	if !ok {
		return FileID{}, fmt.Errorf("parse filename %q: unsupported satellite G%s", filepath, matches[3])
	}

	startedAt, err := parseScanTime(matches[4])
	if err != nil {
		return FileID{}, fmt.Errorf("parse filename %q: %w", filepath, err)
	}

	return FileID{
		Satellite: satellite,
		Region:    matches[1],
		Channel:   channel,
		StartedAt: startedAt,
		Filepath:  filepath,
	}, nil
}

// parseScanTime decodes the 14-digit YYYYJJJHHMMSSt timestamp, where the
// trailing digit is tenths of a second.
func parseScanTime(s string) (time.Time, error) {
	year, err1 := strconv.Atoi(s[0:4])
	doy, err2 := strconv.Atoi(s[4:7])
	hour, err3 := strconv.Atoi(s[7:9])
	minute, err4 := strconv.Atoi(s[9:11])
	second, err5 := strconv.Atoi(s[11:13])
	tenths, err6 := strconv.Atoi(s[13:14])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return time.Time{}, fmt.Errorf("invalid scan timestamp %q", s)
	}
	if doy < 1 || doy > 366 {
		return time.Time{}, fmt.Errorf("invalid day of year %d in scan timestamp %q", doy, s)
	}

	t := time.Date(year, time.January, 1, hour, minute, second, tenths*100_000_000, time.UTC)
	return t.AddDate(0, 0, doy-1), nil
}
