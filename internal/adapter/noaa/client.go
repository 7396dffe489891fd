// Package noaa downloads GOES level-1b objects from the public NOAA
// archive on Amazon S3. The buckets are open, so plain HTTPS GETs suffice
// — no AWS credentials involved.
package noaa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Ferrumofomega/wildfire/internal/goes"
	"github.com/Ferrumofomega/wildfire/internal/observability"
)

// Client implements goes.Fetcher over the NOAA GOES archive.
type Client struct {
	baseURL    string // empty means the public bucket endpoint
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an archive client. baseURL overrides the bucket
// endpoint for tests; leave it empty in production.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// objectURL builds the HTTPS URL for an object in a satellite's bucket.
func (c *Client) objectURL(satellite, objectKey string) string {
	if c.baseURL != "" {
		return fmt.Sprintf("%s/%s/%s", c.baseURL, satellite, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", satellite, objectKey)
}

// Fetch downloads one object into {destDir}/{satellite}/{objectKey} and
// returns the local path. The write is atomic — temp file then rename —
// so a partial download never poses as a cached file.
func (c *Client) Fetch(ctx context.Context, satellite, objectKey, destDir string) (string, error) {
	start := time.Now()
	localPath := goes.LocalPath(destDir, satellite, objectKey)
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	if err := c.download(ctx, c.objectURL(satellite, objectKey), localPath); err != nil {
		c.metrics.Downloads.WithLabelValues("error").Inc()
		return "", err
	}

	c.metrics.Downloads.WithLabelValues("success").Inc()
	c.metrics.DownloadDuration.Observe(time.Since(start).Seconds())
	c.logger.Debug("downloaded scan object", "key", objectKey, "path", localPath)
	return localPath, nil
}

func (c *Client) download(ctx context.Context, url, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("archive returned status %d for %s", resp.StatusCode, url)
	}

	tmp, err := os.CreateTemp(filepath.Dir(localPath), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after successful rename

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", localPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), localPath); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
