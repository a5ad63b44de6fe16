package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/net/html/charset"

	"github.com/pfrederiksen/fpf-results/internal/config"
	"github.com/pfrederiksen/fpf-results/internal/logger"
	"github.com/pfrederiksen/fpf-results/internal/pagecache"
)

// ErrRateLimited is returned when every attempt was answered with 429.
var ErrRateLimited = errors.New("rate limited")

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Fetcher retrieves pages with caching and rate-limit retries.
type Fetcher struct {
	client      *http.Client
	cache       *pagecache.Cache // nil disables caching
	userAgent   string
	cooldown    time.Duration
	maxAttempts int
	metrics     *logger.Metrics
}

// New creates a Fetcher from a run configuration.
func New(cfg config.Config) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent:   cfg.UserAgent,
		cooldown:    cfg.RateLimitCooldown,
		maxAttempts: cfg.MaxAttempts,
		metrics:     logger.DefaultMetrics(),
	}
	if cfg.UseCache {
		f.cache = pagecache.New(cfg.CacheDir, cfg.CacheTTL)
	}
	if f.userAgent == "" {
		f.userAgent = config.DefaultUserAgent
	}
	if f.maxAttempts <= 0 {
		f.maxAttempts = config.DefaultMaxAttempts
	}
	return f
}

// SetHTTPClient replaces the underlying HTTP client.
func (f *Fetcher) SetHTTPClient(c *http.Client) {
	f.client = c
}

// SetMetrics replaces the metrics tracker (tests use a private one).
func (f *Fetcher) SetMetrics(m *logger.Metrics) {
	f.metrics = m
}

// Cache returns the page cache, or nil when caching is disabled.
func (f *Fetcher) Cache() *pagecache.Cache {
	return f.cache
}

// Get returns the decoded text of url. When caching is enabled a cached copy
// stored under cacheKey is returned without touching the network, and a
// fresh download is written back under the same key.
func (f *Fetcher) Get(ctx context.Context, url, cacheKey string) (string, error) {
	if f.cache != nil && cacheKey != "" {
		content, ok, err := f.cache.Get(cacheKey)
		switch {
		case err != nil:
			logger.Warn("Cache read failed, fetching from network", logger.Fields{"key": cacheKey, "error": err.Error()})
		case ok:
			f.metrics.IncrCounter("fetch.cache_hit")
			logger.Debug("Read page from cache", logger.Fields{"key": cacheKey})
			return content, nil
		}
	}

	logger.Info("Fetching page", logger.Fields{"url": url})

	var body string
	attempts := 0
	op := func() error {
		attempts++
		content, err := f.fetchOnce(ctx, url)
		if err == nil {
			body = content
			return nil
		}
		if isRateLimited(err) {
			f.metrics.IncrCounter("fetch.rate_limited")
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.cooldown), uint64(f.maxAttempts-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		logger.Warn("Rate limited, waiting before retry", logger.Fields{
			"url":          url,
			"attempt":      attempts,
			"max_attempts": f.maxAttempts,
			"wait":         wait.String(),
		})
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if isRateLimited(err) {
			return "", fmt.Errorf("%w after %d attempts: %w", ErrRateLimited, attempts, err)
		}
		return "", err
	}

	if f.cache != nil && cacheKey != "" {
		if err := f.cache.Set(cacheKey, body); err != nil {
			logger.Warn("Cache write failed", logger.Fields{"key": cacheKey, "error": err.Error()})
		}
	}
	return body, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	start := time.Now()
	defer func() { f.metrics.RecordTiming("fetch.duration", time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-PT,pt;q=0.9,en;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	f.metrics.IncrCounter("fetch.network")
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) // nolint:errcheck
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	text, err := toUTF8(reader, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(text)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(data), nil
}

// decodeBody undoes the Content-Encoding. Setting Accept-Encoding by hand
// turns off the transport's transparent gzip handling.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return r, nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		logger.Warn("Unknown content encoding", logger.Fields{"encoding": encoding})
		return io.NopCloser(resp.Body), nil
	}
}

// toUTF8 converts bodies that declare a non-UTF-8 charset. Undeclared
// bodies are passed through untouched since the site serves UTF-8.
func toUTF8(r io.Reader, contentType string) (io.Reader, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return r, nil
	}
	label := strings.ToLower(strings.TrimSpace(params["charset"]))
	if label == "" || label == "utf-8" || label == "utf8" {
		return r, nil
	}
	converted, err := charset.NewReaderLabel(label, r)
	if err != nil {
		return nil, fmt.Errorf("decoding charset %q: %w", label, err)
	}
	return converted, nil
}

func isRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests
}

// IsNotFound reports whether err is a 404 from the site.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
