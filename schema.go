package jsonschema

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-jsonschema/constraint"
	"github.com/albertocavalcante/go-jsonschema/docparse"
	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
	"github.com/albertocavalcante/go-jsonschema/refgraph"
)

// Schema is a compiled schema resource. It is immutable and safe for
// concurrent use.
type Schema struct {
	uri    string
	doc    jsonvalue.Value
	root   constraint.Constraint
	loader *Loader
}

// URI returns the URI the schema was loaded from.
func (s *Schema) URI() string { return s.uri }

// Document returns the dereferenced schema document.
func (s *Schema) Document() jsonvalue.Value { return s.doc }

// Graph returns the reference graph of the resources reachable from the
// schema.
func (s *Schema) Graph() *refgraph.Graph { return s.loader.cache.Graph(s.uri) }

// Validate checks instance against the root schema.
func (s *Schema) Validate(instance jsonvalue.Value) Errors {
	return s.root.Validate(instance, "")
}

// ValidateAt checks instance against the schema object at pointer inside
// the schema document. "", "/" and "#" all address the root; any other
// pointer must start with "/", optionally behind a "#". A pointer that is
// malformed or does not reach a schema object yields an error wrapping
// ErrInvalidPointer.
func (s *Schema) ValidateAt(instance jsonvalue.Value, pointer string) (Errors, error) {
	ptr := normalizePointer(pointer)
	if ptr == "" {
		return s.Validate(instance), nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, &InvalidPointerError{URI: s.uri, Pointer: pointer, Err: errNotPointer}
	}

	target, err := jsonvalue.Lookup(s.doc, ptr)
	if err == nil {
		target, err = jsonvalue.Deref(target)
	}
	if err != nil {
		return nil, &InvalidPointerError{URI: s.uri, Pointer: pointer, Err: err}
	}
	if _, ok := target.(*jsonvalue.Object); !ok {
		return nil, &InvalidPointerError{URI: s.uri, Pointer: pointer, Err: errNotSchema(target)}
	}

	c, err := s.loader.compiler.BuildAt(s.doc, ptr)
	if err != nil {
		return nil, err
	}
	return c.Validate(instance, ""), nil
}

var errNotPointer = errors.New(`not a JSON Pointer: must be empty or start with "/"`)

type notSchemaError struct {
	kind jsonvalue.Kind
}

func (e notSchemaError) Error() string {
	return "target is " + e.kind.String() + ", not a schema object"
}

func errNotSchema(v jsonvalue.Value) error {
	return notSchemaError{kind: v.Kind()}
}

func normalizePointer(p string) string {
	p = strings.TrimPrefix(p, "#")
	if p == "/" {
		return ""
	}
	return p
}

// ValidateBytes decodes data as JSON and validates it.
func (s *Schema) ValidateBytes(data []byte) (Errors, error) {
	instance, err := docparse.Decode(docparse.JSON{}, "", data)
	if err != nil {
		return nil, err
	}
	return s.Validate(instance), nil
}

// ValidateAll validates instances concurrently and returns their results
// in order. It stops early only when ctx is done.
func (s *Schema) ValidateAll(ctx context.Context, instances []jsonvalue.Value) ([]Errors, error) {
	results := make([]Errors, len(instances))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.loader.cfg.concurrency)
	for i, instance := range instances {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.Validate(instance)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
