package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// DocumentCache stores raw documents between loads, keyed by key URI.
// Implementations must be safe for concurrent use. HTTPFetcher logs cache
// errors and carries on without the cache.
type DocumentCache interface {
	// Get returns the cached bytes and true, or false on a miss.
	Get(ctx context.Context, uri string) ([]byte, bool, error)
	Put(ctx context.Context, uri string, content []byte) error
}

var (
	_ DocumentCache = NoopCache{}
	_ DocumentCache = (*MemoryCache)(nil)
	_ DocumentCache = (*DirCache)(nil)
	_ DocumentCache = (*FailingCache)(nil)
)

// NoopCache never hits and drops every write.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NoopCache) Put(context.Context, string, []byte) error         { return nil }

// MemoryCache keeps documents in memory for the life of the process. It can
// be shared by several loaders.
type MemoryCache struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{docs: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, uri string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[uri]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(doc), true, nil
}

func (c *MemoryCache) Put(_ context.Context, uri string, content []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[uri] = slices.Clone(content)
	return nil
}

// Len returns the number of cached documents.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// DirCache keeps documents as files in Dir, one file per URI named by the
// SHA-256 of the URI. Writes go through a temporary file and a rename, so
// concurrent processes never see a partial document.
type DirCache struct {
	Dir string
}

// NewDirCache returns a cache in dir, creating it if needed.
func NewDirCache(dir string) (*DirCache, error) {
	if dir == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &DirCache{Dir: dir}, nil
}

func (c *DirCache) path(uri string) string {
	sum := sha256.Sum256([]byte(uri))
	return filepath.Join(c.Dir, hex.EncodeToString(sum[:]))
}

func (c *DirCache) Get(ctx context.Context, uri string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(c.path(uri))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *DirCache) Put(ctx context.Context, uri string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.Dir, ".put-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(uri))
}

// FailingCache fails every call. Tests use it to check that cache errors
// never fail a fetch.
type FailingCache struct {
	GetErr error
	PutErr error
}

// NewFailingCache returns a FailingCache; nil errors get a generic message.
func NewFailingCache(getErr, putErr error) *FailingCache {
	c := &FailingCache{GetErr: getErr, PutErr: putErr}
	if c.GetErr == nil {
		c.GetErr = errors.New("cache get failed")
	}
	if c.PutErr == nil {
		c.PutErr = errors.New("cache put failed")
	}
	return c
}

func (c *FailingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, c.GetErr
}

func (c *FailingCache) Put(context.Context, string, []byte) error { return c.PutErr }
