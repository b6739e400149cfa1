// Package docparse decodes raw schema documents into jsonvalue trees.
//
// JSON is the native format. YAML documents and Starlark files holding a
// single dict or list literal are accepted as well, chosen by the path
// extension of the resource URI:
//
//	.json (or anything else)  JSON
//	.yaml, .yml               YAML
//	.star, .bzl, .sky         Starlark
package docparse

import (
	"fmt"
	"path"
	"strings"

	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
	"github.com/albertocavalcante/go-jsonschema/uri"
)

// ErrDecode is the sentinel matched by every decode failure. It is the same
// value as jsonvalue.ErrDecode.
var ErrDecode = jsonvalue.ErrDecode

// Parser decodes one document format.
type Parser interface {
	// Format names the format in error messages, e.g. "json".
	Format() string
	Parse(data []byte) (jsonvalue.Value, error)
}

// DecodeError reports a document that could not be decoded.
type DecodeError struct {
	URI    string
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.URI == "" {
		return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("decode %s document %s: %v", e.Format, e.URI, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// Decode runs p over data and wraps any failure in a *DecodeError naming uri.
func Decode(p Parser, uri string, data []byte) (jsonvalue.Value, error) {
	v, err := p.Parse(data)
	if err != nil {
		return nil, &DecodeError{URI: uri, Format: p.Format(), Err: err}
	}
	return v, nil
}

var (
	jsonParser     Parser = JSON{}
	yamlParser     Parser = YAML{}
	starlarkParser Parser = Starlark{}
)

// ForURI picks a parser from the path extension of rawURI.
func ForURI(rawURI string) Parser {
	p := rawURI
	if u, err := uri.Parse(rawURI); err == nil {
		p = u.Path()
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return yamlParser
	case ".star", ".bzl", ".sky":
		return starlarkParser
	default:
		return jsonParser
	}
}
