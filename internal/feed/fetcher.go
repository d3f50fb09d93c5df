package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/rajasatyajit/StatusAggregator/internal/errors"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "StatusAggregator/1.0"
	maxBodyBytes     = 8 << 20
)

// ErrBodyTooLarge wraps a FetchError whose response exceeded the body limit
var ErrBodyTooLarge = errors.New("response body too large")

// Option configures a Fetcher
type Option func(*Fetcher)

// WithTimeout bounds every request made by the fetcher
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
			f.client.Timeout = d
		}
	}
}

// WithRetries sets how many times a failed request is retried and the base
// delay between attempts. Attempt n waits n*delay.
func WithRetries(n int, delay time.Duration) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.retries = n
		}
		f.retryDelay = delay
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithMaxBodyBytes caps the accepted response size
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// WithHTTPClient replaces the underlying client
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// Fetcher retrieves raw status payloads over HTTP
type Fetcher struct {
	client     *http.Client
	timeout    time.Duration
	userAgent  string
	retries    int
	retryDelay time.Duration
	maxBody    int64
}

// NewFetcher creates a fetcher with a 10s timeout and one retry
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:     &http.Client{Timeout: defaultTimeout},
		timeout:    defaultTimeout,
		userAgent:  defaultUserAgent,
		retries:    1,
		retryDelay: 500 * time.Millisecond,
		maxBody:    maxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the body of url. Non-2xx responses and transport failures
// are returned as FetchError. 5xx and transport errors are retried.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(time.Duration(attempt) * f.retryDelay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, apperrors.FetchError{URL: url, Err: ctx.Err()}
			case <-t.C:
			}
		}

		body, retry, err := f.do(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (f *Fetcher) do(ctx context.Context, url string) ([]byte, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, apperrors.FetchError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json, application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, apperrors.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode >= 500, apperrors.FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, true, apperrors.FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.maxBody {
		return nil, false, apperrors.FetchError{URL: url, Err: fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, f.maxBody)}
	}
	return body, false, nil
}
