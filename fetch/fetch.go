package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Fetcher returns the raw bytes of the resource identified by an absolute,
// normalized URI (no query, no fragment).
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Func adapts a function to the Fetcher interface.
type Func func(ctx context.Context, uri string) ([]byte, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, uri string) ([]byte, error) {
	return f(ctx, uri)
}

// Sentinel errors for fetch failures.
var (
	// ErrNotFound indicates the resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnsupportedScheme indicates no fetcher handles the URI's scheme.
	ErrUnsupportedScheme = errors.New("unsupported uri scheme")
)

// Error describes a failed fetch of a single URI.
type Error struct {
	URI string
	// StatusCode is the HTTP status, or 404 for a missing local file.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: status %d: %v", e.URI, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URI, e.Err)
	default:
		return fmt.Sprintf("fetch %s: status %d", e.URI, e.StatusCode)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes 404 errors match ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err means the resource does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
