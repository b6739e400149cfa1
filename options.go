package jsonschema

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/albertocavalcante/go-jsonschema/constraint"
	"github.com/albertocavalcante/go-jsonschema/fetch"
	"github.com/albertocavalcante/go-jsonschema/refcache"
)

// Option configures a Loader.
type Option func(*loaderConfig) error

type loaderConfig struct {
	fetcher        fetch.Fetcher
	resources      map[string][]byte
	httpClient     *http.Client
	timeout        time.Duration
	docCache       fetch.DocumentCache
	rewriteID      bool
	idKeyword      string
	registry       *constraint.Registry
	engine         constraint.RegexpEngine
	patternTimeout time.Duration
	concurrency    int
	onProgress     func(ProgressEvent)

	// logger is the structured logger for debug output. Nil keeps the
	// library silent.
	logger *slog.Logger
}

// ProgressEvent reports loading progress. See WithProgress.
type ProgressEvent = refcache.ProgressEvent

// Progress event types.
const (
	ProgressResolveStart = refcache.ProgressResolveStart
	ProgressResolveEnd   = refcache.ProgressResolveEnd
	ProgressFetchStart   = refcache.ProgressFetchStart
	ProgressFetchEnd     = refcache.ProgressFetchEnd
	ProgressCacheHit     = refcache.ProgressCacheHit
)

// DefaultOptions returns the options NewLoader starts from: a 15 second
// HTTP timeout, id rewriting, the draft-04 keywords and ECMAScript patterns.
func DefaultOptions() []Option {
	return []Option{
		WithTimeout(15 * time.Second),
		WithRewriteID(true),
		WithRegistry(constraint.Draft4()),
		WithRegexpEngine(constraint.ECMAScript{}),
		WithPatternTimeout(constraint.DefaultPatternTimeout),
	}
}

// WithFetcher replaces the default file/http fetcher. Resources added with
// WithResources are still served first.
func WithFetcher(f fetch.Fetcher) Option {
	return func(c *loaderConfig) error {
		if f == nil {
			return errors.New("fetcher cannot be nil")
		}
		c.fetcher = f
		return nil
	}
}

// WithResources serves the given URI → document map from memory, ahead of
// any fetcher.
func WithResources(docs map[string][]byte) Option {
	return func(c *loaderConfig) error {
		if c.resources == nil {
			c.resources = make(map[string][]byte, len(docs))
		}
		for k, v := range docs {
			c.resources[k] = v
		}
		return nil
	}
}

// WithHTTPClient sets the client of the default HTTP fetcher.
func WithHTTPClient(client *http.Client) Option {
	return func(c *loaderConfig) error {
		c.httpClient = client
		return nil
	}
}

// WithTimeout sets the per-request timeout of the default HTTP fetcher.
func WithTimeout(d time.Duration) Option {
	return func(c *loaderConfig) error {
		c.timeout = d
		return nil
	}
}

// WithDocumentCache stores raw HTTP responses in cache so later loaders
// skip the network.
func WithDocumentCache(cache fetch.DocumentCache) Option {
	return func(c *loaderConfig) error {
		c.docCache = cache
		return nil
	}
}

// WithRewriteID controls whether a document's top-level id is replaced by
// the URI it was loaded from.
func WithRewriteID(rewrite bool) Option {
	return func(c *loaderConfig) error {
		c.rewriteID = rewrite
		return nil
	}
}

// WithIDKeyword sets the member that rebases relative references, "id" by
// default. Draft-06 and later documents use "$id".
func WithIDKeyword(keyword string) Option {
	return func(c *loaderConfig) error {
		c.idKeyword = keyword
		return nil
	}
}

// WithRegistry sets the keywords schemas are compiled with.
func WithRegistry(r *constraint.Registry) Option {
	return func(c *loaderConfig) error {
		if r == nil {
			return errors.New("registry cannot be nil")
		}
		c.registry = r
		return nil
	}
}

// WithRegexpEngine selects the engine for the pattern keyword.
func WithRegexpEngine(e constraint.RegexpEngine) Option {
	return func(c *loaderConfig) error {
		if e == nil {
			return errors.New("regexp engine cannot be nil")
		}
		c.engine = e
		return nil
	}
}

// WithPatternTimeout bounds each pattern match.
func WithPatternTimeout(d time.Duration) Option {
	return func(c *loaderConfig) error {
		c.patternTimeout = d
		return nil
	}
}

// WithConcurrency limits the goroutines Schema.ValidateAll uses. Zero means
// GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(c *loaderConfig) error {
		c.concurrency = n
		return nil
	}
}

// WithProgress sets a callback for loading progress events.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(c *loaderConfig) error {
		c.onProgress = fn
		return nil
	}
}

// WithLogger sets a structured logger for debug output.
//
// By default the library is silent:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	schema, err := jsonschema.Compile(ctx, uri, jsonschema.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *loaderConfig) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *loaderConfig) validate() error {
	if c.timeout < 0 {
		return errors.New("timeout must be positive")
	}
	if c.patternTimeout < 0 {
		return errors.New("pattern timeout must be positive")
	}
	if c.concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.concurrency)
	}
	// The HTTP options only configure the default fetcher.
	if c.fetcher != nil && (c.httpClient != nil || c.docCache != nil) {
		return errors.New("WithHTTPClient and WithDocumentCache cannot be combined with WithFetcher")
	}
	return nil
}

func newLoaderConfig(opts ...Option) (*loaderConfig, error) {
	c := &loaderConfig{}
	for _, opt := range append(DefaultOptions(), opts...) {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.concurrency == 0 {
		c.concurrency = runtime.GOMAXPROCS(0)
	}
	return c, nil
}

// httpOptions translates the HTTP settings for the default fetcher.
func (c *loaderConfig) httpOptions() []fetch.HTTPOption {
	var opts []fetch.HTTPOption
	if c.httpClient != nil {
		opts = append(opts, fetch.WithHTTPClient(c.httpClient))
	}
	if c.timeout > 0 {
		opts = append(opts, fetch.WithTimeout(c.timeout))
	}
	if c.docCache != nil {
		opts = append(opts, fetch.WithCache(c.docCache))
	}
	return opts
}

func (c *loaderConfig) cacheOptions(f fetch.Fetcher) []refcache.Option {
	opts := []refcache.Option{
		refcache.WithFetcher(f),
		refcache.WithRewriteID(c.rewriteID),
		refcache.WithLogger(c.logger),
		refcache.WithProgress(c.onProgress),
	}
	if c.idKeyword != "" {
		opts = append(opts, refcache.WithIDKeyword(c.idKeyword))
	}
	return opts
}
