package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
)

// Valid minimal PNG data for 1x1 transparent pixel
var pngData = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

type recordedSleeps struct {
	delays []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func newTestFetcher(sleeps *recordedSleeps) *HTTPImageFetcher {
	return NewHTTPImageFetcher(5*time.Second, 1024*1024, WithFetchSleep(sleeps.sleep))
}

func TestHTTPImageFetcher_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int
		expectRetries int
		expectCode    string
		expectStatus  int
	}{
		{
			name:          "Success on first attempt",
			responses:     []int{200},
			expectRetries: 1,
		},
		{
			name:          "Success on second attempt after 5xx",
			responses:     []int{500, 200},
			expectRetries: 2,
		},
		{
			name:          "4xx client error - no retry",
			responses:     []int{404},
			expectRetries: 1,
			expectCode:    apperrors.CodeImageFetchFailed,
			expectStatus:  400,
		},
		{
			name:          "4xx after 5xx - stops at 4xx",
			responses:     []int{500, 404},
			expectRetries: 2,
			expectCode:    apperrors.CodeImageFetchFailed,
			expectStatus:  400,
		},
		{
			name:          "All 5xx errors - retry all attempts",
			responses:     []int{500, 502, 503},
			expectRetries: 3,
			expectCode:    apperrors.CodeImageFetchFailed,
			expectStatus:  502,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requestCount int32

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(atomic.AddInt32(&requestCount, 1)) - 1
				if n >= len(tt.responses) {
					w.WriteHeader(500)
					return
				}
				if status := tt.responses[n]; status != 200 {
					w.WriteHeader(status)
					w.Write([]byte(fmt.Sprintf("Error %d", status)))
					return
				}
				w.Header().Set("Content-Type", "image/png; charset=binary")
				w.Write(pngData)
			}))
			defer server.Close()

			sleeps := &recordedSleeps{}
			img, err := newTestFetcher(sleeps).FetchImage(context.Background(), server.URL+"/photos/me.png")

			if got := int(atomic.LoadInt32(&requestCount)); got != tt.expectRetries {
				t.Errorf("Expected %d requests, got %d", tt.expectRetries, got)
			}

			if tt.expectCode == "" {
				if err != nil {
					t.Fatalf("Expected no error, got: %v", err)
				}
				if img.ContentType != "image/png" || img.Filename != "me.png" || img.Size != int64(len(pngData)) {
					t.Errorf("Unexpected image %+v", img)
				}
				return
			}

			if apperrors.GetCode(err) != tt.expectCode {
				t.Errorf("Expected code %s, got %v", tt.expectCode, err)
			}
			if apperrors.GetStatusCode(err) != tt.expectStatus {
				t.Errorf("Expected status %d, got %d", tt.expectStatus, apperrors.GetStatusCode(err))
			}
		})
	}
}

func TestHTTPImageFetcher_Backoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	}))
	defer server.Close()

	sleeps := &recordedSleeps{}
	_, _ = newTestFetcher(sleeps).FetchImage(context.Background(), server.URL)

	want := []time.Duration{time.Second, 2 * time.Second}
	if len(sleeps.delays) != len(want) {
		t.Fatalf("Expected delays %v, got %v", want, sleeps.delays)
	}
	for i := range want {
		if sleeps.delays[i] != want[i] {
			t.Errorf("Delay %d: expected %v, got %v", i, want[i], sleeps.delays[i])
		}
	}
}

func TestHTTPImageFetcher_NetworkError_Retry(t *testing.T) {
	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requestCount, 1) < 3 {
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

	sleeps := &recordedSleeps{}
	if _, err := newTestFetcher(sleeps).FetchImage(context.Background(), server.URL); err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if got := atomic.LoadInt32(&requestCount); got < 3 {
		t.Errorf("Expected at least 3 requests, got %d", got)
	}
}

func TestHTTPImageFetcher_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte(strings.Repeat("a", 2048)))
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher(5*time.Second, 1024)
	_, err := fetcher.FetchImage(context.Background(), server.URL)
	if apperrors.GetCode(err) != apperrors.CodeFileTooLarge {
		t.Errorf("Expected FILE_TOO_LARGE, got %v", err)
	}
}

func TestHTTPImageFetcher_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := NewHTTPImageFetcher(5*time.Second, 1024, WithFetchSleep(func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}))

	_, err := fetcher.FetchImage(ctx, server.URL)
	if apperrors.GetCode(err) != apperrors.CodeRequestTimeout {
		t.Errorf("Expected REQUEST_TIMEOUT, got %v", err)
	}
}

func TestParseBlobURL(t *testing.T) {
	tests := []struct {
		in        string
		container string
		blob      string
		wantErr   bool
	}{
		{"azblob://photos/2024/me.jpg", "photos", "2024/me.jpg", false},
		{"azblob://photos/", "", "", true},
		{"azblob:///me.jpg", "", "", true},
	}

	for _, tt := range tests {
		container, blob, err := ParseBlobURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBlobURL(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if container != tt.container || blob != tt.blob {
			t.Errorf("ParseBlobURL(%q) = %q, %q", tt.in, container, blob)
		}
	}
}
