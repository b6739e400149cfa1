package refcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/albertocavalcante/go-jsonschema/fetch"
	"github.com/albertocavalcante/go-jsonschema/internal/logging"
	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
	"github.com/albertocavalcante/go-jsonschema/refgraph"
	"github.com/albertocavalcante/go-jsonschema/uri"
)

// Cache holds fully dereferenced schema documents keyed by key URI.
//
// Documents are loaded in resolution passes. A pass fetches a resource and
// everything it transitively references, then rewrites every $ref object
// into a *jsonvalue.Ref handle bound to the cache. Handles are followed on
// access, so resources may refer to each other cyclically. A pass either
// commits all of its documents or none of them; once committed a document
// never changes.
//
// A Cache is safe for concurrent use. Concurrent Get calls for the same key
// share one pass, and passes run one at a time. A shared pass runs under the
// context of the caller that started it; if that caller is cancelled, the
// other callers start a new pass instead of failing.
type Cache struct {
	cfg    config
	logger *slog.Logger

	mu    sync.RWMutex
	docs  map[string]jsonvalue.Value
	graph *refgraph.Builder

	passMu sync.Mutex
	group  singleflight.Group
}

// New returns an empty cache.
func New(opts ...Option) (*Cache, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.fetcher == nil {
		cfg.fetcher = fetch.Default(cfg.logger)
	}
	return &Cache{
		cfg:    cfg,
		logger: logging.OrDiscard(cfg.logger),
		docs:   make(map[string]jsonvalue.Value),
		graph:  refgraph.NewBuilder(),
	}, nil
}

func keyOf(rawURI string) (string, error) {
	key, _, err := splitTarget(rawURI)
	return key, err
}

// splitTarget returns the key URI and the decoded fragment of an absolute
// URI.
func splitTarget(target string) (key, fragment string, err error) {
	u, err := uri.Parse(target)
	if err != nil {
		return "", "", err
	}
	if !u.IsAbs() {
		return "", "", fmt.Errorf("uri %q is not absolute", target)
	}
	return u.Key().String(), u.Fragment(), nil
}

// Get returns the document at the key URI of rawURI, loading it and every
// resource it references on first use. The fragment is ignored. Repeated
// calls return the same value without fetching again.
//
// When the document's root is itself a reference the returned value is a
// *jsonvalue.Ref.
func (c *Cache) Get(ctx context.Context, rawURI string) (jsonvalue.Value, error) {
	key, err := keyOf(rawURI)
	if err != nil {
		return nil, err
	}
	if doc, ok := c.cached(key); ok {
		c.emit(ProgressEvent{Type: ProgressCacheHit, URI: key})
		return doc, nil
	}

	for {
		v, err, _ := c.group.Do(key, func() (any, error) {
			c.passMu.Lock()
			defer c.passMu.Unlock()
			if doc, ok := c.cached(key); ok {
				return doc, nil
			}
			doc, err := c.resolve(ctx, key)
			if err != nil && ctx.Err() != nil {
				return nil, &abandonedPass{err: err}
			}
			return doc, err
		})
		var abandoned *abandonedPass
		if errors.As(err, &abandoned) {
			if ctx.Err() == nil {
				c.logger.Debug("shared pass cancelled by its caller, retrying", "uri", key)
				continue
			}
			return nil, abandoned.err
		}
		if err != nil {
			return nil, err
		}
		return v.(jsonvalue.Value), nil
	}
}

// abandonedPass is the result of a pass stopped by the cancellation of the
// caller that ran it. Callers sharing the pass whose own context is still
// live run another one.
type abandonedPass struct {
	err error
}

func (e *abandonedPass) Error() string { return e.err.Error() }
func (e *abandonedPass) Unwrap() error { return e.err }

// Exists reports whether the resource at rawURI is loaded.
func (c *Cache) Exists(rawURI string) bool {
	key, err := keyOf(rawURI)
	if err != nil {
		return false
	}
	_, ok := c.cached(key)
	return ok
}

// Pointer resolves the fragment of target, a JSON Pointer, inside an already
// loaded document. It never loads anything; a document that is not cached
// yields a *NotCachedError. The addressed value is returned as stored, which
// may be a *jsonvalue.Ref.
func (c *Cache) Pointer(target string) (jsonvalue.Value, error) {
	key, fragment, err := splitTarget(target)
	if err != nil {
		return nil, err
	}
	doc, ok := c.cached(key)
	if !ok {
		return nil, &NotCachedError{URI: key}
	}
	return jsonvalue.Lookup(doc, fragment)
}

// Len returns the number of loaded documents.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Keys returns the key URIs of the loaded documents, sorted.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.docs))
}

// Graph returns the reference graph of the loaded resources reachable from
// rawURI.
func (c *Cache) Graph(rawURI string) *refgraph.Graph {
	key, err := keyOf(rawURI)
	if err != nil {
		return &refgraph.Graph{Root: rawURI, Resources: map[string]*refgraph.Node{}}
	}
	return c.graph.Build(key)
}

func (c *Cache) cached(key string) (jsonvalue.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[key]
	return doc, ok
}

func (c *Cache) emit(e ProgressEvent) {
	if c.cfg.progress != nil {
		c.cfg.progress(e)
	}
}

var _ jsonvalue.Resolver = (*Cache)(nil)
