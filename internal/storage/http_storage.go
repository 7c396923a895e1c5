package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/pkg/models"
)

const fetchAttempts = 3

// ImageFetcher downloads a remote image as raw bytes
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (*models.UploadedImage, error)
}

// HTTPImageFetcher implements ImageFetcher over plain HTTP(S)
type HTTPImageFetcher struct {
	client   *http.Client
	maxBytes int64
	sleep    func(ctx context.Context, d time.Duration) error
}

// HTTPFetcherOption customizes an HTTPImageFetcher
type HTTPFetcherOption func(*HTTPImageFetcher)

// WithFetchSleep replaces the backoff sleep, used by tests
func WithFetchSleep(sleep func(ctx context.Context, d time.Duration) error) HTTPFetcherOption {
	return func(h *HTTPImageFetcher) { h.sleep = sleep }
}

// WithHTTPClient replaces the underlying client
func WithHTTPClient(client *http.Client) HTTPFetcherOption {
	return func(h *HTTPImageFetcher) { h.client = client }
}

// NewHTTPImageFetcher creates an HTTP image fetcher. Bodies larger than maxBytes are rejected.
func NewHTTPImageFetcher(timeout time.Duration, maxBytes int64, opts ...HTTPFetcherOption) *HTTPImageFetcher {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	h := &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FetchImage retries network failures and 5xx responses with linear backoff; 4xx responses are final
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (*models.UploadedImage, error) {
	var lastErr error

	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		img, retryable, err := h.fetchOnce(ctx, imageURL)
		if err == nil {
			return img, nil
		}
		lastErr = err
		if !retryable || attempt == fetchAttempts {
			break
		}
		if err := h.sleep(ctx, time.Duration(attempt)*time.Second); err != nil {
			return nil, apperrors.NewTimeoutError("Image download cancelled", err)
		}
	}

	if _, ok := apperrors.As(lastErr); ok {
		return nil, lastErr
	}
	return nil, apperrors.NewNetworkError(apperrors.CodeImageFetchFailed,
		fmt.Sprintf("Failed to fetch image after %d attempts", fetchAttempts), lastErr)
}

func (h *HTTPImageFetcher) fetchOnce(ctx context.Context, imageURL string) (*models.UploadedImage, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, false, apperrors.NewValidationError(apperrors.CodeInvalidURL, "Invalid URL format", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, */*")
	req.Header.Set("User-Agent", "RateMyLooks/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, apperrors.NewTimeoutError("Image download cancelled", ctx.Err())
		}
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, false, apperrors.NewBadRequestError(apperrors.CodeImageFetchFailed,
			fmt.Sprintf("Image URL returned status %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	}

	data, err := readLimited(resp.Body, h.maxBytes)
	if err != nil {
		return nil, false, err
	}

	return &models.UploadedImage{
		Data:        data,
		Filename:    filenameFromURL(imageURL),
		ContentType: mediaType(resp.Header.Get("Content-Type")),
		Size:        int64(len(data)),
	}, false, nil
}

// readLimited reads at most max bytes and reports larger bodies as too large
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, apperrors.NewNetworkError(apperrors.CodeImageFetchFailed, "Failed to read image body", err)
	}
	if int64(len(data)) > max {
		return nil, apperrors.NewValidationError(apperrors.CodeFileTooLarge,
			fmt.Sprintf("File too large. Maximum size is %dMB", max/1024/1024), nil)
	}
	return data, nil
}

func mediaType(header string) string {
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return mt
}

func filenameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
