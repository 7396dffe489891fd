package goes

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
)

// Fetcher retrieves a remote object into a local directory and returns the
// local path. Implemented by the NOAA archive adapter; any retrieval
// failure is treated as a malformed-scan failure for the group that needed
// the file.
type Fetcher interface {
	Fetch(ctx context.Context, satellite, objectKey, destDir string) (string, error)
}

// RasterData is the named-variable content of one band file as exposed by
// the raster store collaborator. Quality is nil when the store carries no
// per-pixel quality flags.
type RasterData struct {
	Rad         Grid
	Quality     []int
	Calibration Calibration
}

// RasterReader opens a local band file and returns its variables. The
// core never parses the on-disk byte format itself.
type RasterReader interface {
	Read(localPath string) (RasterData, error)
}

// Loader assembles complete scans from groups of object keys, downloading
// any file not already present in the local directory.
type Loader struct {
	fetcher  Fetcher
	reader   RasterReader
	localDir string
	logger   *slog.Logger
}

// NewLoader creates a Loader. localDir is the explicit local storage root;
// files land under {localDir}/{satellite}/{objectKey}.
func NewLoader(fetcher Fetcher, reader RasterReader, localDir string, logger *slog.Logger) *Loader {
	return &Loader{
		fetcher:  fetcher,
		reader:   reader,
		localDir: localDir,
		logger:   logger,
	}
}

// LocalPath computes where an object key is cached on disk.
func LocalPath(localDir, satellite, objectKey string) string {
	return filepath.Join(localDir, satellite, filepath.FromSlash(objectKey))
}

// LoadScan fetches, reads, and calibrates the 16 band files of one scan
// group. Every failure mode — unparseable key, mismatched identity, wrong
// band count, retrieval failure, unreadable file — wraps ErrMalformedScan
// so the engine can recover per group.
func (l *Loader) LoadScan(ctx context.Context, filepaths []string) (*Scan, error) {
	ids, err := l.identifyGroup(filepaths)
	if err != nil {
		return nil, err
	}

	bands := make([]Band, 0, len(ids))
	for _, id := range ids {
		band, err := l.loadBand(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: band %d: %v", ErrMalformedScan, id.Channel, err)
		}
		bands = append(bands, band)
	}

	key := ids[0].Key()
	return NewScan(key.Satellite, key.Region, key.StartedAt, bands)
}

// identifyGroup parses every filepath and verifies the group shares one
// satellite/region/start-time identity.
func (l *Loader) identifyGroup(filepaths []string) ([]FileID, error) {
	if len(filepaths) != channelCount {
		return nil, fmt.Errorf("%w: got %d files, want %d", ErrMalformedScan, len(filepaths), channelCount)
	}

	ids := make([]FileID, 0, channelCount)
	for _, fp := range filepaths {
		id, err := ParseFilename(fp)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedScan, err)
		}
		ids = append(ids, id)
	}

	key := ids[0].Key()
	for _, id := range ids[1:] {
		if id.Key() != key {
			return nil, fmt.Errorf("%w: %s does not match scan %s/%s at %s",
				ErrMalformedScan, id.Filepath, key.Satellite, key.Region, key.StartedAt)
		}
	}
	return ids, nil
}

// loadBand returns one calibrated band, reading from the local cache when
// the file is already present so re-runs never re-download.
func (l *Loader) loadBand(ctx context.Context, id FileID) (Band, error) {
	localPath := LocalPath(l.localDir, id.Satellite, id.Filepath)
	if _, err := os.Stat(localPath); err != nil {
		fetched, err := l.fetcher.Fetch(ctx, id.Satellite, id.Filepath, l.localDir)
		if err != nil {
			return Band{}, fmt.Errorf("fetch %s: %w", id.Filepath, err)
		}
		localPath = fetched
	} else {
		l.logger.Debug("reading scan from local path", "path", localPath)
	}

	data, err := l.reader.Read(localPath)
	if err != nil {
		return Band{}, fmt.Errorf("read %s: %w", localPath, err)
	}

	resolution, err := NativeResolutionM(id.Channel)
	if err != nil {
		return Band{}, err
	}

	return Band{
		Channel:     id.Channel,
		Rad:         maskBadPixels(data.Rad, data.Quality),
		Calibration: data.Calibration,
		ResolutionM: resolution,
	}, nil
}

// maskBadPixels sets radiance samples with nonzero quality flags to NaN.
// Flag zero means a good pixel in the ABI DQF convention.
func maskBadPixels(rad Grid, quality []int) Grid {
	if quality == nil || len(quality) != rad.Height()*rad.Width() {
		return rad
	}
	i := -1
	return rad.Map(func(v float64) float64 {
		i++
		if quality[i] != 0 {
			return math.NaN()
		}
		return v
	})
}
