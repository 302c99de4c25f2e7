package modelcache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Config configures model downloading
type Config struct {
	CacheDir string
	Token    string // sent as a bearer token, e.g. for gated HuggingFace files
	Client   *http.Client
}

// Cache downloads model files once and serves them from local disk
type Cache struct {
	config Config
}

// New creates a new model cache
func New(config Config) *Cache {
	if config.CacheDir == "" {
		config.CacheDir = "."
	}

	// Expand ~ to home directory
	if strings.HasPrefix(config.CacheDir, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			config.CacheDir = filepath.Join(homeDir, config.CacheDir[1:])
		}
	}

	if config.Client == nil {
		config.Client = &http.Client{}
	}

	return &Cache{
		config: config,
	}
}

// Path returns the path where the file at rawURL is cached
func (c *Cache) Path(rawURL string) (string, error) {
	name, err := fileName(rawURL)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.config.CacheDir, name), nil
}

// Fetch returns the cached copy of rawURL, downloading it first if the file
// is not in the cache yet. Files are keyed by name only.
func (c *Cache) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := os.MkdirAll(c.config.CacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	cachedPath, err := c.Path(rawURL)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(cachedPath); err == nil {
		slog.Debug("Using cached model", "path", cachedPath)
		return cachedPath, nil
	}

	slog.Info("Downloading model", "url", rawURL)
	if err := c.downloadFile(ctx, rawURL, cachedPath); err != nil {
		return "", fmt.Errorf("failed to download model: %w", err)
	}

	slog.Info("Model downloaded successfully", "path", cachedPath)
	return cachedPath, nil
}

func fileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid model url %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("model url %q has no file name", rawURL)
	}
	return name, nil
}

// downloadFile downloads a file from a URL to a local path
func (c *Cache) downloadFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.config.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	// Write to a temporary file and move it into place once complete
	tempPath := destPath + ".tmp"
	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	pw := &progressWriter{w: out, total: resp.ContentLength}
	_, err = io.Copy(pw, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move file: %w", err)
	}

	return nil
}

const progressStep = 10 * 1024 * 1024

// progressWriter logs progress every 10MB
type progressWriter struct {
	w          io.Writer
	total      int64
	downloaded int64
	next       int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.downloaded += int64(n)
	if p.downloaded >= p.next {
		p.next += progressStep
		attrs := []any{"downloaded_mb", p.downloaded / (1024 * 1024)}
		if p.total > 0 {
			attrs = append(attrs,
				"total_mb", p.total/(1024*1024),
				"progress", fmt.Sprintf("%.1f%%", float64(p.downloaded)/float64(p.total)*100))
		}
		slog.Debug("Download progress", attrs...)
	}
	return n, err
}
