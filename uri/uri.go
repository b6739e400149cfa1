// Package uri parses and resolves the URIs that identify schema resources.
//
// Resolution follows RFC 3986: absolute references pass through, relative
// references merge with the base's scheme, authority and path, and a
// fragment-only reference keeps the base document. Two URIs name the same
// resource when their key URIs, the URI without query and fragment, match.
package uri

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/xeipuuv/gojsonreference"
)

// ErrFragmentNotPointer is returned by Parse for a fragment that is neither
// empty nor a JSON Pointer, such as the plain name in "a.json#node".
var ErrFragmentNotPointer = errors.New("fragment is not a JSON Pointer")

// URI is an absolute or relative URI reference.
type URI struct {
	ref gojsonreference.JsonReference
}

// Parse parses s as a URI reference. The fragment, if any, must be empty or
// a JSON Pointer.
func Parse(s string) (URI, error) {
	ref, err := gojsonreference.NewJsonReference(s)
	if err != nil {
		return URI{}, fmt.Errorf("parse uri %q: %w", s, err)
	}
	if u := ref.GetUrl(); u != nil && u.Fragment != "" && !strings.HasPrefix(u.Fragment, "/") {
		return URI{}, fmt.Errorf("parse uri %q: %w", s, ErrFragmentNotPointer)
	}
	return URI{ref: ref}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) URI {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (u URI) url() *url.URL {
	if p := u.ref.GetUrl(); p != nil {
		return p
	}
	return &url.URL{}
}

// IsZero reports whether u was never parsed.
func (u URI) IsZero() bool { return u.ref.GetUrl() == nil }

// IsAbs reports whether u has a scheme.
func (u URI) IsAbs() bool { return u.url().IsAbs() }

// Scheme returns the lower-cased scheme.
func (u URI) Scheme() string { return strings.ToLower(u.url().Scheme) }

// Path returns the decoded path component.
func (u URI) Path() string { return u.url().Path }

// Fragment returns the decoded fragment without the leading '#'.
func (u URI) Fragment() string { return u.url().Fragment }

// HasFragment reports whether the URI carries a '#', even an empty one.
func (u URI) HasFragment() bool {
	return u.url().Fragment != "" || strings.HasSuffix(u.String(), "#")
}

func (u URI) String() string {
	if u.IsZero() {
		return ""
	}
	return u.ref.String()
}

// Key returns the key URI: u without query and fragment.
func (u URI) Key() URI {
	if u.IsZero() {
		return u
	}
	k := *u.url()
	k.RawQuery = ""
	k.ForceQuery = false
	k.Fragment = ""
	k.RawFragment = ""
	ref, err := gojsonreference.NewJsonReference(k.String())
	if err != nil {
		return u
	}
	return URI{ref: ref}
}

// ResolveReference resolves ref against u as its base.
func (u URI) ResolveReference(ref URI) (URI, error) {
	if u.IsZero() {
		return ref, nil
	}
	if ref.IsZero() {
		return URI{}, errors.New("resolve uri: empty reference")
	}
	resolved, err := u.ref.Inherits(ref.ref)
	if err != nil {
		return URI{}, fmt.Errorf("resolve %q against %q: %w", ref, u, err)
	}
	return URI{ref: *resolved}, nil
}

// Resolve parses s and resolves it against u.
func (u URI) Resolve(s string) (URI, error) {
	ref, err := Parse(s)
	if err != nil {
		return URI{}, err
	}
	return u.ResolveReference(ref)
}

// WithFragment returns u with its fragment replaced.
func (u URI) WithFragment(fragment string) URI {
	c := *u.url()
	c.Fragment = fragment
	c.RawFragment = ""
	ref, err := gojsonreference.NewJsonReference(c.String())
	if err != nil {
		return u
	}
	return URI{ref: ref}
}

// FromPath converts a local file path into an absolute file:// URI.
// Relative paths are made absolute against the working directory.
func FromPath(path string) (URI, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return URI{}, fmt.Errorf("absolute path for %s: %w", path, err)
	}
	urlPath := filepath.ToSlash(abs)
	if len(urlPath) >= 2 && isWindowsDriveLetter(urlPath[0]) && urlPath[1] == ':' {
		urlPath = "/" + urlPath
	}
	return Parse((&url.URL{Scheme: "file", Path: urlPath}).String())
}

// FilePath returns the native path of a file:// URI.
//
//	Unix:    file:///tmp/schema.json      -> /tmp/schema.json
//	Windows: file:///C:/schemas/a.json    -> C:/schemas/a.json
func (u URI) FilePath() (string, error) {
	if u.Scheme() != "file" {
		return "", fmt.Errorf("not a file:// URI: %s", u)
	}
	path := u.Path()
	if len(path) >= 3 && path[0] == '/' && isWindowsDriveLetter(path[1]) && path[2] == ':' {
		path = path[1:]
	}
	if runtime.GOOS != "windows" && u.url().Host != "" && u.url().Host != "localhost" {
		return "", fmt.Errorf("file URI with remote host %q is not supported", u.url().Host)
	}
	return filepath.Clean(filepath.FromSlash(path)), nil
}

// isWindowsDriveLetter returns true if c is a valid Windows drive letter (A-Z, a-z).
func isWindowsDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// IsLocalPath reports whether s looks like a filesystem path rather than a
// URI with a scheme. Windows drive paths such as C:\x count as paths.
func IsLocalPath(s string) bool {
	if len(s) >= 2 && isWindowsDriveLetter(s[0]) && s[1] == ':' {
		return true
	}
	u, err := url.Parse(s)
	return err != nil || u.Scheme == ""
}
