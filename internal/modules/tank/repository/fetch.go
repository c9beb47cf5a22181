package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

var (
	ErrFetchFailed       = errors.New("fetch failed")
	ErrRemoteUnavailable = errors.New("remote unavailable")
)

// RemoteUnavailableError is returned when the remote answers with a non-200 status.
type RemoteUnavailableError struct {
	URL        string
	StatusCode int
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote unavailable: GET %s: status %d", e.URL, e.StatusCode)
}

func (e *RemoteUnavailableError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

// FetchError wraps transport failures and timeouts.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type httpFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher returns a Fetcher doing a single GET bounded by timeout. There is no retry.
func NewHTTPFetcher(timeout time.Duration, maxBytes int64) Fetcher {
	return &httpFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		slog.Debug("csv fetch failed", "url", url, "error", err)
		return nil, &FetchError{URL: url, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Debug("close csv response body", "error", err)
		}
	}()

	slog.Debug("csv fetched",
		"url", url,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &RemoteUnavailableError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("body exceeds %d bytes", f.maxBytes)}
	}
	return body, nil
}
