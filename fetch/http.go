package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/albertocavalcante/go-jsonschema/internal/logging"
)

// HTTP client defaults.
const (
	DefaultMaxIdleConns        = 50
	DefaultMaxIdleConnsPerHost = 20
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultRequestTimeout      = 15 * time.Second

	// DefaultMaxBodySize caps a single schema document.
	DefaultMaxBodySize = 32 << 20
)

// HTTPFetcher fetches http:// and https:// URIs with connection pooling and
// an optional external DocumentCache.
type HTTPFetcher struct {
	client      *http.Client
	cache       DocumentCache
	logger      *slog.Logger
	maxBodySize int64
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client. The fetcher keeps a shallow
// copy, so WithTimeout does not change the caller's client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if client != nil {
			c := *client
			f.client = &c
		}
	}
}

// WithTimeout sets the request timeout. Zero or negative values fall back
// to DefaultRequestTimeout.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		if timeout <= 0 {
			timeout = DefaultRequestTimeout
		}
		f.client.Timeout = timeout
	}
}

// WithCache sets an external cache for raw documents.
func WithCache(cache DocumentCache) HTTPOption {
	return func(f *HTTPFetcher) {
		f.cache = cache
	}
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(f *HTTPFetcher) {
		f.logger = l
	}
}

// WithMaxBodySize limits the size of a fetched document.
func WithMaxBodySize(n int64) HTTPOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// NewHTTPFetcher creates an HTTP fetcher with pooled connections.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	f := &HTTPFetcher{
		client: &http.Client{
			Timeout:   DefaultRequestTimeout,
			Transport: transport,
		},
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a GET for uri, consulting the document cache first.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	log := logging.OrDiscard(f.logger)

	if f.cache != nil {
		data, ok, err := f.cache.Get(ctx, uri)
		if err != nil {
			// A broken cache must not break fetching.
			log.Warn("document cache read failed", "uri", uri, "error", err)
		} else if ok {
			log.Debug("document cache hit", "uri", uri)
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, http.NoBody)
	if err != nil {
		return nil, &Error{URI: uri, Err: err}
	}
	req.Header.Set("Accept", "application/schema+json, application/json;q=0.9, */*;q=0.1")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URI: uri, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URI: uri, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &Error{URI: uri, StatusCode: resp.StatusCode, Err: err}
	}
	if int64(len(data)) > f.maxBodySize {
		return nil, &Error{URI: uri, StatusCode: resp.StatusCode, Err: fmt.Errorf("document exceeds %d bytes", f.maxBodySize)}
	}
	log.Debug("fetched schema", "uri", uri, "bytes", len(data), "duration", time.Since(start))

	if f.cache != nil {
		if err := f.cache.Put(ctx, uri, data); err != nil {
			log.Warn("document cache write failed", "uri", uri, "error", err)
		}
	}
	return data, nil
}

var _ Fetcher = (*HTTPFetcher)(nil)
