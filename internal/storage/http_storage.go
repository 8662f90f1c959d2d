package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/photo-scorer-go/internal/logger"
)

// ImageFetcher retrieves the raw bytes of a remote photo
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// HTTPFetcherConfig tunes the HTTP fetcher
type HTTPFetcherConfig struct {
	Timeout  time.Duration
	MaxBytes int64
	Attempts int
	// Backoff is multiplied by the attempt number between retries
	Backoff time.Duration
}

// DefaultHTTPFetcherConfig returns the production settings
func DefaultHTTPFetcherConfig() HTTPFetcherConfig {
	return HTTPFetcherConfig{
		Timeout:  30 * time.Second,
		MaxBytes: 25 * 1024 * 1024,
		Attempts: 3,
		Backoff:  time.Second,
	}
}

// HTTPImageFetcher implements ImageFetcher over plain HTTP(S)
type HTTPImageFetcher struct {
	client *http.Client
	cfg    HTTPFetcherConfig
}

// NewHTTPImageFetcher creates an HTTP image fetcher
func NewHTTPImageFetcher(cfg HTTPFetcherConfig) ImageFetcher {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}

	transport := &http.Transport{
		// Connection pooling sized for single image downloads
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
	}
}

// FetchImage downloads imageURL. 5xx responses and transport errors are
// retried; 4xx responses are not.
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < h.cfg.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("fetch cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * h.cfg.Backoff):
			}
		}

		data, retryable, err := h.fetchOnce(ctx, imageURL)
		if err == nil {
			return data, nil
		}
		lastErr = err

		logger.WithComponent("storage").WithFields(logrus.Fields{
			"url":       imageURL,
			"attempt":   attempt + 1,
			"retryable": retryable,
		}).WithError(err).Debug("Image fetch attempt failed")

		if !retryable {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", h.cfg.Attempts, lastErr)
}

func (h *HTTPImageFetcher) fetchOnce(ctx context.Context, imageURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "Photo-Scorer/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	data, err := readCapped(resp.Body, h.cfg.MaxBytes)
	if err != nil {
		return nil, false, err
	}
	return data, false, nil
}

// ErrTooLarge is returned when a body exceeds the configured cap
var ErrTooLarge = errors.New("image body exceeds size limit")

func readCapped(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
