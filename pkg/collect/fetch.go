// Package collect gathers raw Puppet code from public sources: module
// repositories on GitHub, documentation pages, and technical-book PDFs.
package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

const (
	defaultRequestTimeout = 15 * time.Second
	defaultFetchRate      = rate.Limit(2) // requests per second, be nice to hosts
	defaultFetchBurst     = 1
	defaultMaxTries       = 4
	maxBodyBytes          = 10 << 20
)

const userAgent = "puppetmill/1.0 (+https://github.com/manifestlab/puppetmill)"

// ErrNotFound is returned for HTTP 404 responses. Callers probing for
// optional files (branch fallbacks, well-known manifest paths) branch on it.
var ErrNotFound = errors.New("not found")

// Fetcher is a rate-limited, retrying HTTP GET client shared by the
// scrapers. Retries use exponential backoff; 404s are permanent.
type Fetcher struct {
	log     *slog.Logger
	client  *http.Client
	limiter *rate.Limiter
	headers map[string]string
}

// FetcherConfig holds configuration for creating a Fetcher.
type FetcherConfig struct {
	Logger *slog.Logger

	// Optional configuration.
	HTTPClient *http.Client
	Rate       rate.Limit
	Burst      int
	Headers    map[string]string
}

func (c *FetcherConfig) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	if c.Rate == 0 {
		c.Rate = defaultFetchRate
	}
	if c.Burst == 0 {
		c.Burst = defaultFetchBurst
	}
	return nil
}

func NewFetcher(cfg *FetcherConfig) (*Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Fetcher{
		log:     cfg.Logger,
		client:  cfg.HTTPClient,
		limiter: rate.NewLimiter(cfg.Rate, cfg.Burst),
		headers: cfg.Headers,
	}, nil
}

// Get fetches a URL and returns the response body. The rate limiter is
// awaited before every attempt, including retries.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	attempt := 0
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		if attempt > 0 {
			f.log.Warn("Retrying fetch", "url", url, "attempt", attempt)
		}
		attempt++
		return f.getOnce(ctx, url)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(defaultMaxTries))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return body, nil
}

func (f *Fetcher) getOnce(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(ErrNotFound)
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return nil, backoff.Permanent(fmt.Errorf("http %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return body, nil
}
