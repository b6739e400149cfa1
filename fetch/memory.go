package fetch

import (
	"context"
	"net/http"
	"sync"
)

// MemoryFetcher serves documents from memory. It is used for bundled
// schemas and in tests, where Count shows how often each URI was fetched.
type MemoryFetcher struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	counts map[string]int
}

// NewMemoryFetcher returns a fetcher serving the given URI → document map.
func NewMemoryFetcher(docs map[string][]byte) *MemoryFetcher {
	m := &MemoryFetcher{
		docs:   make(map[string][]byte, len(docs)),
		counts: make(map[string]int),
	}
	for k, v := range docs {
		m.docs[k] = v
	}
	return m
}

// Add registers or replaces a document.
func (m *MemoryFetcher) Add(uri string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[uri] = data
}

// Fetch returns the registered document or a 404 Error.
func (m *MemoryFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[uri]++
	data, ok := m.docs[uri]
	if !ok {
		return nil, &Error{URI: uri, StatusCode: http.StatusNotFound}
	}
	return data, nil
}

// Has reports whether uri is registered.
func (m *MemoryFetcher) Has(uri string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.docs[uri]
	return ok
}

// Count returns how many times uri was requested.
func (m *MemoryFetcher) Count(uri string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[uri]
}

var _ Fetcher = (*MemoryFetcher)(nil)
