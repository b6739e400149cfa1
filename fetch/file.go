package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/albertocavalcante/go-jsonschema/internal/logging"
	"github.com/albertocavalcante/go-jsonschema/uri"
)

// FileFetcher reads file:// URIs from the local file system.
//
//	Unix:    file:///tmp/schemas/a.json
//	Windows: file:///C:/schemas/a.json
//
// When Root is set, paths outside it are refused.
type FileFetcher struct {
	// Root restricts reads to this directory tree when non-empty.
	Root string

	logger *slog.Logger
}

// NewFileFetcher returns a fetcher for file:// URIs.
func NewFileFetcher(logger *slog.Logger) *FileFetcher {
	return &FileFetcher{logger: logging.OrDiscard(logger)}
}

// Fetch reads the file named by a file:// URI.
func (f *FileFetcher) Fetch(ctx context.Context, rawURI string) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	u, err := uri.Parse(rawURI)
	if err != nil {
		return nil, &Error{URI: rawURI, Err: err}
	}
	path, err := u.FilePath()
	if err != nil {
		return nil, &Error{URI: rawURI, Err: fmt.Errorf("%w: %v", ErrUnsupportedScheme, err)}
	}
	if f.Root != "" && !withinRoot(filepath.Clean(f.Root), path) {
		return nil, &Error{URI: rawURI, Err: fmt.Errorf("path %s is outside %s", path, f.Root)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{URI: rawURI, StatusCode: http.StatusNotFound}
		}
		return nil, &Error{URI: rawURI, Err: fmt.Errorf("read %s: %w", path, err)}
	}

	f.log().Debug("read schema file", "path", path, "bytes", len(data))
	return data, nil
}

func (f *FileFetcher) log() *slog.Logger {
	return logging.OrDiscard(f.logger)
}

func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

var _ Fetcher = (*FileFetcher)(nil)
