package constraint

import (
	"slices"
	"time"

	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
)

// Context carries what a Builder may need besides its own keyword value.
type Context struct {
	// Schema is the schema object that holds the keyword.
	Schema *jsonvalue.Object
	// Pointer locates Schema inside its document.
	Pointer string

	Engine         RegexpEngine
	PatternTimeout time.Duration
}

func (c *Context) engine() RegexpEngine {
	if c == nil || c.Engine == nil {
		return ECMAScript{}
	}
	return c.Engine
}

func (c *Context) timeout() time.Duration {
	if c == nil || c.PatternTimeout <= 0 {
		return DefaultPatternTimeout
	}
	return c.PatternTimeout
}

func (c *Context) pointer() string {
	if c == nil {
		return ""
	}
	return c.Pointer
}

// Builder turns the value of one schema keyword into a Constraint.
type Builder interface {
	Keyword() string
	// CanBuild reports whether the builder applies to this keyword value.
	// A keyword the builder declines is skipped rather than rejected.
	CanBuild(fragment jsonvalue.Value) bool
	Build(fragment jsonvalue.Value, ctx *Context) (Constraint, error)
}

// BuildFunc builds a constraint from a keyword value.
type BuildFunc func(fragment jsonvalue.Value, ctx *Context) (Constraint, error)

// KeywordBuilder adapts a function into a Builder.
type KeywordBuilder struct {
	name  string
	build BuildFunc
	can   func(jsonvalue.Value) bool
}

// Keyword returns a builder for name that applies to every value.
func Keyword(name string, build BuildFunc) *KeywordBuilder {
	return &KeywordBuilder{name: name, build: build}
}

// When returns a copy of b that only applies to values accepted by can.
func (b *KeywordBuilder) When(can func(jsonvalue.Value) bool) *KeywordBuilder {
	cp := *b
	cp.can = can
	return &cp
}

func (b *KeywordBuilder) Keyword() string { return b.name }

func (b *KeywordBuilder) CanBuild(fragment jsonvalue.Value) bool {
	return b.can == nil || b.can(fragment)
}

func (b *KeywordBuilder) Build(fragment jsonvalue.Value, ctx *Context) (Constraint, error) {
	return b.build(fragment, ctx)
}

// Registry is an ordered, immutable set of builders. Compilation consults
// the builders in registry order.
type Registry struct {
	builders []Builder
}

// NewRegistry returns a registry of builders. A later builder for the same
// keyword replaces an earlier one in its position.
func NewRegistry(builders ...Builder) *Registry {
	r := &Registry{}
	r.add(builders)
	return r
}

func (r *Registry) add(builders []Builder) {
	for _, b := range builders {
		if b == nil {
			continue
		}
		i := slices.IndexFunc(r.builders, func(x Builder) bool { return x.Keyword() == b.Keyword() })
		if i >= 0 {
			r.builders[i] = b
			continue
		}
		r.builders = append(r.builders, b)
	}
}

// With returns a copy of r extended with builders. r is unchanged.
func (r *Registry) With(builders ...Builder) *Registry {
	cp := &Registry{builders: slices.Clone(r.builders)}
	cp.add(builders)
	return cp
}

// Builders returns the builders in order.
func (r *Registry) Builders() []Builder {
	return slices.Clone(r.builders)
}

// Lookup returns the builder for keyword.
func (r *Registry) Lookup(keyword string) (Builder, bool) {
	for _, b := range r.builders {
		if b.Keyword() == keyword {
			return b, true
		}
	}
	return nil, false
}

// Keywords returns the registered keywords in order.
func (r *Registry) Keywords() []string {
	out := make([]string, len(r.builders))
	for i, b := range r.builders {
		out[i] = b.Keyword()
	}
	return out
}

var draft4 = NewRegistry(
	TypeBuilder(),
	PatternBuilder(),
	MinLengthBuilder(),
	MaxLengthBuilder(),
)

// Draft4 returns the registry of the supported draft-04 keywords: type,
// pattern, minLength and maxLength.
func Draft4() *Registry { return draft4 }
