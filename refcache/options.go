package refcache

import (
	"errors"
	"log/slog"
	"time"

	"github.com/albertocavalcante/go-jsonschema/docparse"
	"github.com/albertocavalcante/go-jsonschema/fetch"
)

// DefaultIDKeyword is the member that rebases relative references.
const DefaultIDKeyword = "id"

// Option configures a Cache.
type Option func(*config) error

type config struct {
	fetcher   fetch.Fetcher
	parserFor func(uri string) docparse.Parser
	rewriteID bool
	idKeyword string
	logger    *slog.Logger
	progress  func(ProgressEvent)
}

func defaultConfig() config {
	return config{
		parserFor: docparse.ForURI,
		rewriteID: true,
		idKeyword: DefaultIDKeyword,
	}
}

// WithFetcher sets the fetcher documents are loaded through. The default
// serves file://, http:// and https://.
func WithFetcher(f fetch.Fetcher) Option {
	return func(c *config) error {
		if f == nil {
			return errors.New("fetcher cannot be nil")
		}
		c.fetcher = f
		return nil
	}
}

// WithParser sets the function choosing a parser for each resource URI.
func WithParser(fn func(uri string) docparse.Parser) Option {
	return func(c *config) error {
		if fn == nil {
			return errors.New("parser selector cannot be nil")
		}
		c.parserFor = fn
		return nil
	}
}

// WithRewriteID controls whether a document's top-level id is replaced by
// the key URI it was loaded from. Enabled by default.
func WithRewriteID(rewrite bool) Option {
	return func(c *config) error {
		c.rewriteID = rewrite
		return nil
	}
}

// WithIDKeyword sets the member name used for base URI rebasing, e.g.
// "$id" for later drafts.
func WithIDKeyword(keyword string) Option {
	return func(c *config) error {
		c.idKeyword = keyword
		return nil
	}
}

// WithLogger sets a structured logger. Nil disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

// WithProgress sets a callback for load progress events.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(c *config) error {
		c.progress = fn
		return nil
	}
}

func (c *config) validate() error {
	if c.idKeyword == "" {
		return errors.New("id keyword cannot be empty")
	}
	if c.idKeyword == "$ref" {
		return errors.New("id keyword cannot be $ref")
	}
	return nil
}

// ProgressEventType identifies a progress event.
type ProgressEventType string

const (
	// ProgressResolveStart is emitted when a resolution pass begins.
	ProgressResolveStart ProgressEventType = "resolve_start"
	// ProgressResolveEnd is emitted when a resolution pass commits or fails.
	ProgressResolveEnd ProgressEventType = "resolve_end"
	// ProgressFetchStart is emitted before a resource is fetched.
	ProgressFetchStart ProgressEventType = "fetch_start"
	// ProgressFetchEnd is emitted after a fetch, successful or not.
	ProgressFetchEnd ProgressEventType = "fetch_end"
	// ProgressCacheHit is emitted when Get is served from the cache.
	ProgressCacheHit ProgressEventType = "cache_hit"
)

// ProgressEvent reports load progress.
type ProgressEvent struct {
	Type ProgressEventType
	// URI is the key URI concerned.
	URI string
	// Duration is set on end events.
	Duration time.Duration
	// Err is set on end events that failed.
	Err error
}
