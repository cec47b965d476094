package utils

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"clipforge/models"
)

// Fetcher downloads remote assets and detects their format token
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher with the given per-request timeout
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Download performs a single GET, failing on transport errors and non-2xx
// statuses. No retry: one failed attempt fails the whole request. Returns
// the full body and the detected format token.
func (f *Fetcher) Download(url string, class models.MediaClass) ([]byte, string, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return nil, "", &models.DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &models.DownloadError{
			URL: url,
			Err: fmt.Errorf("download failed with status %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &models.DownloadError{URL: url, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	format := DetectFormat(contentType, url, class)
	log.Info().Str("format", format).Str("content_type", contentType).Msg("Detected format")

	return data, format, nil
}

// DownloadToFile streams a GET response straight to a local path, used for
// large intermediate artifacts like the finished avatar clip.
func (f *Fetcher) DownloadToFile(url, destPath string) error {
	resp, err := f.client.Get(url)
	if err != nil {
		return &models.DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &models.DownloadError{
			URL: url,
			Err: fmt.Errorf("download failed with status %d", resp.StatusCode),
		}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write file %s: %w", destPath, err)
	}
	return nil
}
