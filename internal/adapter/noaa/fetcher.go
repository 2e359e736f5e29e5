package noaa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/observability"
)

// ErrNoSource is returned when the dataset is not cached and no URL is configured.
var ErrNoSource = errors.New("dataset not cached and no download URL configured")

// Fetcher keeps a local copy of the Storm Events dataset, downloading it on first use.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewFetcher creates a Fetcher whose downloads are bounded by timeout.
func NewFetcher(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// EnsureCached downloads url to path unless path already exists.
// The download lands in a temporary file next to path and is renamed into
// place only once complete, so an interrupted run never leaves a truncated cache.
func (f *Fetcher) EnsureCached(ctx context.Context, url, path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return fmt.Errorf("dataset path %s is a directory", path)
		}
		f.logger.Info("using cached dataset", "path", path, "bytes", info.Size())
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat dataset: %w", err)
	}
	if url == "" {
		return fmt.Errorf("%s: %w", path, ErrNoSource)
	}

	f.logger.Info("dataset not cached, downloading", "url", url, "path", path)
	start := time.Now()

	n, err := f.download(ctx, url, path)
	if err != nil {
		return err
	}

	f.metrics.DownloadDuration.Observe(time.Since(start).Seconds())
	f.metrics.DownloadBytes.Add(float64(n))
	f.logger.Info("dataset downloaded", "path", path, "bytes", n, "duration", time.Since(start))
	return nil
}

func (f *Fetcher) download(ctx context.Context, url, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("download dataset: status %d: %s", resp.StatusCode, body)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("move dataset into place: %w", err)
	}
	return n, nil
}
