package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultMaxImageSize = 20 << 20
)

// FetchError reports that a sticker image could not be retrieved
type FetchError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch image %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch image %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPAssetFetcher retrieves sticker artwork over HTTP
// Implements AssetFetcherInterface
type HTTPAssetFetcher struct {
	HTTPClient   *http.Client
	MaxImageSize int64
}

// NewHTTPAssetFetcher creates a fetcher with the given timeout (30s when zero)
func NewHTTPAssetFetcher(timeout time.Duration) *HTTPAssetFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPAssetFetcher{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		MaxImageSize: defaultMaxImageSize,
	}
}

// Ensure HTTPAssetFetcher implements AssetFetcherInterface
var _ AssetFetcherInterface = (*HTTPAssetFetcher)(nil)

// Fetch downloads the raw bytes behind imageURL. No retry is attempted.
func (f *HTTPAssetFetcher) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: err}
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        imageURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("image endpoint returned status %d", resp.StatusCode),
		}
	}

	limit := f.MaxImageSize
	if limit <= 0 {
		limit = defaultMaxImageSize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: fmt.Errorf("failed to read image data: %w", err)}
	}
	if int64(len(data)) > limit {
		return nil, &FetchError{URL: imageURL, Err: fmt.Errorf("image exceeds %d bytes", limit)}
	}

	return data, nil
}
