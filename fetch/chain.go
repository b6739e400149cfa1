package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// Chain tries fetchers in order and returns the first success.
//
// It falls back to the next fetcher on any error, not only 404, so an
// unreachable mirror or a TLS failure does not hide a copy that a later
// fetcher can serve. Once a fetcher has served a URI, later requests for that
// URI go straight to it.
type Chain struct {
	fetchers []Fetcher

	servedBy   map[string]int // uri -> fetcher index
	servedByMu sync.RWMutex
}

// NewChain creates a chain. At least one fetcher is required.
func NewChain(fetchers ...Fetcher) (*Chain, error) {
	clean := make([]Fetcher, 0, len(fetchers))
	for _, f := range fetchers {
		if f != nil {
			clean = append(clean, f)
		}
	}
	if len(clean) == 0 {
		return nil, errors.New("no fetchers provided")
	}
	return &Chain{
		fetchers: clean,
		servedBy: make(map[string]int),
	}, nil
}

// Fetch tries each fetcher in order.
func (c *Chain) Fetch(ctx context.Context, uri string) ([]byte, error) {
	c.servedByMu.RLock()
	idx, found := c.servedBy[uri]
	c.servedByMu.RUnlock()

	if found {
		return c.fetchers[idx].Fetch(ctx, uri)
	}

	var failures []string
	allNotFound := true
	for i, f := range c.fetchers {
		data, err := f.Fetch(ctx, uri)
		if err == nil {
			c.servedByMu.Lock()
			if _, exists := c.servedBy[uri]; !exists {
				c.servedBy[uri] = i
			}
			c.servedByMu.Unlock()
			return data, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !IsNotFound(err) {
			allNotFound = false
		}
		failures = append(failures, err.Error())
	}

	chainErr := fmt.Errorf("%s not found by any of %d fetchers:\n  %s",
		uri, len(c.fetchers), strings.Join(failures, "\n  "))
	if allNotFound {
		return nil, &Error{URI: uri, StatusCode: http.StatusNotFound, Err: chainErr}
	}
	return nil, &Error{URI: uri, Err: chainErr}
}

// ServedBy returns the index of the fetcher that served uri, or -1.
func (c *Chain) ServedBy(uri string) int {
	c.servedByMu.RLock()
	defer c.servedByMu.RUnlock()
	if idx, ok := c.servedBy[uri]; ok {
		return idx
	}
	return -1
}

var _ Fetcher = (*Chain)(nil)
