package jsonschema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albertocavalcante/go-jsonschema/compiler"
	"github.com/albertocavalcante/go-jsonschema/fetch"
	"github.com/albertocavalcante/go-jsonschema/internal/logging"
	"github.com/albertocavalcante/go-jsonschema/refcache"
	"github.com/albertocavalcante/go-jsonschema/uri"
)

// Loader loads schema resources into a shared reference cache and compiles
// them. Schemas compiled by one Loader share documents and compiled
// constraints. A Loader is safe for concurrent use.
type Loader struct {
	cfg      *loaderConfig
	logger   *slog.Logger
	memory   *fetch.MemoryFetcher
	cache    *refcache.Cache
	compiler *compiler.Compiler
}

// NewLoader returns a Loader configured by DefaultOptions followed by opts.
func NewLoader(opts ...Option) (*Loader, error) {
	cfg, err := newLoaderConfig(opts...)
	if err != nil {
		return nil, err
	}
	logger := logging.OrDiscard(cfg.logger)

	memory := fetch.NewMemoryFetcher(nil)
	for raw, data := range cfg.resources {
		key, err := resourceKey(raw)
		if err != nil {
			return nil, err
		}
		memory.Add(key, data)
	}

	base := cfg.fetcher
	if base == nil {
		base = fetch.Default(cfg.logger, cfg.httpOptions()...)
	}
	chain, err := fetch.NewChain(memory, base)
	if err != nil {
		return nil, err
	}

	cache, err := refcache.New(cfg.cacheOptions(chain)...)
	if err != nil {
		return nil, fmt.Errorf("configure reference cache: %w", err)
	}

	return &Loader{
		cfg:    cfg,
		logger: logger,
		memory: memory,
		cache:  cache,
		compiler: compiler.New(compiler.Config{
			Registry:       cfg.registry,
			Engine:         cfg.engine,
			PatternTimeout: cfg.patternTimeout,
			Logger:         cfg.logger,
		}),
	}, nil
}

// resourceKey normalises a resource URI to the form the cache fetches.
func resourceKey(raw string) (string, error) {
	u, err := uri.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("resource %q: %w", raw, err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("resource %q: uri is not absolute", raw)
	}
	return u.Key().String(), nil
}

// AddResource serves data for rawURI from memory. Resources already loaded
// into the cache are not replaced.
func (l *Loader) AddResource(rawURI string, data []byte) error {
	key, err := resourceKey(rawURI)
	if err != nil {
		return err
	}
	l.memory.Add(key, data)
	return nil
}

// Compile loads the resource at rawURI, with everything it references, and
// compiles its root schema. The fragment of rawURI is ignored.
func (l *Loader) Compile(ctx context.Context, rawURI string) (*Schema, error) {
	key, err := resourceKey(rawURI)
	if err != nil {
		return nil, err
	}
	doc, err := l.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", key, err)
	}
	root, err := l.compiler.Build(doc)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", key, err)
	}
	l.logger.Debug("compiled schema", "uri", key, "resources", l.cache.Len())
	return &Schema{uri: key, doc: doc, root: root, loader: l}, nil
}

// CompileBytes registers data as the resource at rawURI and compiles it.
// Relative references in data resolve against rawURI.
func (l *Loader) CompileBytes(ctx context.Context, rawURI string, data []byte) (*Schema, error) {
	if err := l.AddResource(rawURI, data); err != nil {
		return nil, err
	}
	return l.Compile(ctx, rawURI)
}

// Resources returns the URIs of the loaded resources, sorted.
func (l *Loader) Resources() []string {
	return l.cache.Keys()
}

// Compile loads and compiles the schema at rawURI with a new Loader.
func Compile(ctx context.Context, rawURI string, opts ...Option) (*Schema, error) {
	l, err := NewLoader(opts...)
	if err != nil {
		return nil, err
	}
	return l.Compile(ctx, rawURI)
}

// CompileBytes compiles data as the resource at rawURI with a new Loader.
func CompileBytes(ctx context.Context, rawURI string, data []byte, opts ...Option) (*Schema, error) {
	l, err := NewLoader(opts...)
	if err != nil {
		return nil, err
	}
	return l.CompileBytes(ctx, rawURI, data)
}
