// Package compiler turns schema objects into constraint trees.
package compiler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/albertocavalcante/go-jsonschema/constraint"
	"github.com/albertocavalcante/go-jsonschema/internal/logging"
	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
)

// Config configures a Compiler. The zero value compiles draft-04 keywords
// with the ECMAScript engine.
type Config struct {
	Registry       *constraint.Registry
	Engine         constraint.RegexpEngine
	PatternTimeout time.Duration
	Logger         *slog.Logger
}

// Compiler builds and memoises constraint trees. It is safe for concurrent
// use.
type Compiler struct {
	registry *constraint.Registry
	engine   constraint.RegexpEngine
	timeout  time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	nodes map[*jsonvalue.Object]constraint.Constraint
}

// New returns a Compiler for cfg.
func New(cfg Config) *Compiler {
	c := &Compiler{
		registry: cfg.Registry,
		engine:   cfg.Engine,
		timeout:  cfg.PatternTimeout,
		logger:   logging.OrDiscard(cfg.Logger),
		nodes:    make(map[*jsonvalue.Object]constraint.Constraint),
	}
	if c.registry == nil {
		c.registry = constraint.Draft4()
	}
	if c.engine == nil {
		c.engine = constraint.ECMAScript{}
	}
	return c
}

// Build compiles the root of doc.
func (c *Compiler) Build(doc jsonvalue.Value) (constraint.Constraint, error) {
	return c.BuildAt(doc, "")
}

// BuildAt compiles the schema object at pointer inside doc. Reference
// handles along the way are followed. The result is cached per schema
// object, so two pointers reaching the same object share one tree.
func (c *Compiler) BuildAt(doc jsonvalue.Value, pointer string) (constraint.Constraint, error) {
	v, err := jsonvalue.Lookup(doc, pointer)
	if err != nil {
		return nil, err
	}
	v, err = jsonvalue.Deref(v)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*jsonvalue.Object)
	if !ok {
		return nil, &constraint.ConstraintParseError{
			Pointer: pointer,
			Message: fmt.Sprintf("schema must be an object, got %s", v.Kind()),
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if node, ok := c.nodes[obj]; ok {
		return node, nil
	}
	node, err := c.compile(obj, pointer)
	if err != nil {
		return nil, err
	}
	c.nodes[obj] = node
	return node, nil
}

func (c *Compiler) compile(obj *jsonvalue.Object, pointer string) (constraint.Constraint, error) {
	ctx := &constraint.Context{
		Schema:         obj,
		Pointer:        pointer,
		Engine:         c.engine,
		PatternTimeout: c.timeout,
	}

	var children []constraint.Constraint
	for _, b := range c.registry.Builders() {
		kw := b.Keyword()
		raw, ok := obj.Get(kw)
		if !ok {
			continue
		}
		fragment, err := jsonvalue.Deref(raw)
		if err != nil {
			return nil, &constraint.ConstraintParseError{
				Keyword: kw,
				Pointer: pointer,
				Message: "keyword value is an unresolvable reference",
				Err:     err,
			}
		}
		if !b.CanBuild(fragment) {
			c.logger.Debug("skipping keyword", "keyword", kw, "pointer", pointer)
			continue
		}
		node, err := b.Build(fragment, ctx)
		if err != nil {
			return nil, asParseError(kw, pointer, err)
		}
		children = append(children, node)
	}

	c.logger.Debug("compiled schema", "pointer", pointer, "constraints", len(children))
	if len(children) == 0 {
		return constraint.Empty{}, nil
	}
	return &constraint.All{Children: children}, nil
}

func asParseError(keyword, pointer string, err error) error {
	if _, ok := err.(*constraint.ConstraintParseError); ok {
		return err
	}
	return &constraint.ConstraintParseError{
		Keyword: keyword,
		Pointer: pointer,
		Message: "cannot build constraint",
		Err:     err,
	}
}

// Len returns the number of cached trees.
func (c *Compiler) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}
