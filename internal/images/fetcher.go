package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"
)

// DefaultMaxBytes caps a downloaded image at 10MB.
const DefaultMaxBytes = 10 * 1024 * 1024

// Fetcher retrieves source images by URL
type Fetcher struct {
	HTTPClient *http.Client
	MaxBytes   int64
}

// NewFetcher creates a new image fetcher
func NewFetcher(maxBytes int64) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxBytes: maxBytes,
	}
}

// Image is a downloaded source image
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Fetch downloads the image at rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid image URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	// Read one byte past the limit to detect oversized bodies.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, fmt.Errorf("image too large (max %d bytes)", f.MaxBytes)
	}

	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		name = "image.jpg"
	}

	slog.Info("Downloaded image", "url", rawURL, "bytes", len(data))

	return &Image{
		Name:        name,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
