package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/albertocavalcante/go-jsonschema/uri"
)

// SchemeMux dispatches to a fetcher by URI scheme.
type SchemeMux struct {
	fetchers map[string]Fetcher
}

// NewSchemeMux returns an empty mux.
func NewSchemeMux() *SchemeMux {
	return &SchemeMux{fetchers: make(map[string]Fetcher)}
}

// Default returns a mux serving file://, http:// and https://.
func Default(logger *slog.Logger, httpOpts ...HTTPOption) *SchemeMux {
	httpFetcher := NewHTTPFetcher(append([]HTTPOption{WithLogger(logger)}, httpOpts...)...)
	mux := NewSchemeMux()
	mux.Handle("file", NewFileFetcher(logger))
	mux.Handle("http", httpFetcher)
	mux.Handle("https", httpFetcher)
	return mux
}

// Handle registers f for scheme, replacing any previous fetcher.
func (m *SchemeMux) Handle(scheme string, f Fetcher) {
	m.fetchers[strings.ToLower(scheme)] = f
}

// Fetch routes uri to the fetcher registered for its scheme.
func (m *SchemeMux) Fetch(ctx context.Context, rawURI string) ([]byte, error) {
	u, err := uri.Parse(rawURI)
	if err != nil {
		return nil, &Error{URI: rawURI, Err: err}
	}
	f, ok := m.fetchers[u.Scheme()]
	if !ok {
		return nil, &Error{URI: rawURI, Err: fmt.Errorf("%w %q", ErrUnsupportedScheme, u.Scheme())}
	}
	return f.Fetch(ctx, rawURI)
}

var _ Fetcher = (*SchemeMux)(nil)
