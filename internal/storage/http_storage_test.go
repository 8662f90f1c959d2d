package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// Valid minimal PNG data for a 1x1 transparent pixel
var pngData = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, // 1x1 dimensions
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, // bit depth, color type, etc.
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41, // IDAT chunk start
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00, // compressed data
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00, // compressed data end
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE, // IEND chunk
	0x42, 0x60, 0x82,
}

func testFetcherConfig() HTTPFetcherConfig {
	cfg := DefaultHTTPFetcherConfig()
	cfg.Timeout = 5 * time.Second
	cfg.Backoff = 10 * time.Millisecond
	return cfg
}

func TestHTTPImageFetcher_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int // Status codes to return in sequence
		expectRetries int   // Expected number of requests
		expectError   bool
		errorContains string
	}{
		{
			name:          "Success on first attempt",
			responses:     []int{200},
			expectRetries: 1,
			expectError:   false,
		},
		{
			name:          "Success on second attempt after 5xx",
			responses:     []int{500, 200},
			expectRetries: 2,
			expectError:   false,
		},
		{
			name:          "4xx client error - no retry",
			responses:     []int{404},
			expectRetries: 1,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "4xx after 5xx - should retry until 4xx then stop",
			responses:     []int{500, 404},
			expectRetries: 2,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "All 5xx errors - retry all attempts",
			responses:     []int{500, 502, 503},
			expectRetries: 3,
			expectError:   true,
			errorContains: "server error: status code 503",
		},
		{
			name:          "Unexpected 2xx - no retry",
			responses:     []int{204},
			expectRetries: 1,
			expectError:   true,
			errorContains: "unexpected status code 204",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requestCount atomic.Int32

			// Create test server that returns responses in sequence
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(requestCount.Add(1)) - 1
				if n >= len(tt.responses) {
					w.WriteHeader(500)
					w.Write([]byte("Unexpected request"))
					return
				}

				statusCode := tt.responses[n]
				if statusCode == 200 {
					w.Header().Set("Content-Type", "image/png")
					w.Write(pngData)
					return
				}
				w.WriteHeader(statusCode)
				w.Write([]byte(fmt.Sprintf("Error %d", statusCode)))
			}))
			defer server.Close()

			fetcher := NewHTTPImageFetcher(testFetcherConfig())
			data, err := fetcher.FetchImage(context.Background(), server.URL)

			if got := int(requestCount.Load()); got != tt.expectRetries {
				t.Errorf("Expected %d requests, got %d", tt.expectRetries, got)
			}

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				} else if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error to contain '%s', got: %s", tt.errorContains, err.Error())
				}
				return
			}

			if err != nil {
				t.Errorf("Expected no error, got: %s", err.Error())
			}
			if !bytes.Equal(data, pngData) {
				t.Errorf("Expected body to be returned unchanged, got %d bytes", len(data))
			}
		})
	}
}

func TestHTTPImageFetcher_NetworkError_Retry(t *testing.T) {
	var requestCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestCount.Add(1) < 3 {
			// Simulate network error by closing connection
			if hj, ok := w.(http.Hijacker); ok {
				conn, _, _ := hj.Hijack()
				conn.Close()
			}
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngData)
	}))
	defer server.Close()

	cfg := testFetcherConfig()
	cfg.Backoff = 50 * time.Millisecond
	fetcher := NewHTTPImageFetcher(cfg)

	start := time.Now()
	_, err := fetcher.FetchImage(context.Background(), server.URL)
	duration := time.Since(start)

	if err != nil {
		t.Errorf("Expected success after retries, got error: %s", err.Error())
	}
	if got := requestCount.Load(); got != 3 {
		t.Errorf("Expected 3 requests, got %d", got)
	}

	// linear backoff: 1x + 2x
	if duration < 150*time.Millisecond {
		t.Errorf("Expected at least 150ms due to backoff, took %v", duration)
	}
}

func TestHTTPImageFetcher_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte{0xAB}, 2048))
	}))
	defer server.Close()

	cfg := testFetcherConfig()
	cfg.MaxBytes = 1024
	_, err := NewHTTPImageFetcher(cfg).FetchImage(context.Background(), server.URL)

	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
}

func TestHTTPImageFetcher_CancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testFetcherConfig()
	cfg.Backoff = time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewHTTPImageFetcher(cfg).FetchImage(ctx, server.URL)
	if err == nil {
		t.Fatal("Expected error after cancellation")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 10*time.Second {
		t.Error("Expected cancellation to interrupt the backoff")
	}
}

func TestHTTPImageFetcher_InvalidURL(t *testing.T) {
	_, err := NewHTTPImageFetcher(testFetcherConfig()).FetchImage(context.Background(), "://bad")
	if err == nil || !strings.Contains(err.Error(), "invalid URL") {
		t.Errorf("Expected invalid URL error, got %v", err)
	}
}
