package constraint

import (
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
)

// TypeNames lists the seven primitive types in the order they are reported.
var TypeNames = []string{"array", "boolean", "integer", "number", "null", "object", "string"}

func knownType(name string) bool {
	for _, n := range TypeNames {
		if n == name {
			return true
		}
	}
	return false
}

// Type requires the instance to be of the named primitive type. Numbers with
// a zero fraction count as integers.
type Type struct {
	Name string
}

func (t *Type) Keyword() string { return "type" }

func (t *Type) Validate(instance jsonvalue.Value, location string) Errors {
	v, errs := deref(t, instance, location)
	if errs != nil {
		return errs
	}
	if typeMatches(t.Name, v) {
		return nil
	}
	return fail(t, location, fmt.Sprintf("expected %s, got %s", t.Name, instanceType(v)))
}

func typeMatches(name string, v jsonvalue.Value) bool {
	switch name {
	case "array":
		_, ok := v.(jsonvalue.Array)
		return ok
	case "boolean":
		_, ok := v.(jsonvalue.Bool)
		return ok
	case "integer":
		n, ok := v.(jsonvalue.Number)
		return ok && n.IsIntegral()
	case "number":
		_, ok := v.(jsonvalue.Number)
		return ok
	case "null":
		_, ok := v.(jsonvalue.Null)
		return ok
	case "object":
		_, ok := v.(*jsonvalue.Object)
		return ok
	case "string":
		_, ok := v.(jsonvalue.String)
		return ok
	}
	return false
}

func instanceType(v jsonvalue.Value) string {
	if n, ok := v.(jsonvalue.Number); ok && n.IsIntegral() {
		return "integer"
	}
	return v.Kind().String()
}

// TypeBuilder builds the type keyword. A string yields a Type; a non-empty
// array of distinct names yields a OneOf over Types.
func TypeBuilder() Builder {
	return Keyword("type", buildType)
}

func buildType(fragment jsonvalue.Value, ctx *Context) (Constraint, error) {
	shape := func() error {
		return &ConstraintParseError{
			Keyword: "type",
			Pointer: ctx.pointer(),
			Message: "value must be a string or a non-empty array of unique strings",
		}
	}
	unknown := func(name string) error {
		return &ConstraintParseError{
			Keyword: "type",
			Pointer: ctx.pointer(),
			Message: fmt.Sprintf("%q is not one of the seven primitive types", name),
			Err:     ErrUnknownType,
		}
	}

	switch v := fragment.(type) {
	case jsonvalue.String:
		if !knownType(string(v)) {
			return nil, unknown(string(v))
		}
		return &Type{Name: string(v)}, nil
	case jsonvalue.Array:
		if len(v) == 0 {
			return nil, shape()
		}
		seen := make(map[string]bool, len(v))
		children := make([]Constraint, 0, len(v))
		for _, item := range v {
			s, ok := item.(jsonvalue.String)
			if !ok || seen[string(s)] {
				return nil, shape()
			}
			if !knownType(string(s)) {
				return nil, unknown(string(s))
			}
			seen[string(s)] = true
			children = append(children, &Type{Name: string(s)})
		}
		return &OneOf{Name: "type", Children: children}, nil
	}
	return nil, shape()
}

// MinLength requires strings to have at least Limit characters. Other
// instances are accepted.
type MinLength struct {
	Limit int
}

func (m *MinLength) Keyword() string { return "minLength" }

func (m *MinLength) Validate(instance jsonvalue.Value, location string) Errors {
	v, errs := deref(m, instance, location)
	if errs != nil {
		return errs
	}
	s, ok := v.(jsonvalue.String)
	if !ok {
		return nil
	}
	if n := utf8.RuneCountInString(string(s)); n < m.Limit {
		return fail(m, location, fmt.Sprintf("length %d is less than %d", n, m.Limit))
	}
	return nil
}

// MaxLength requires strings to have at most Limit characters. Other
// instances are accepted.
type MaxLength struct {
	Limit int
}

func (m *MaxLength) Keyword() string { return "maxLength" }

func (m *MaxLength) Validate(instance jsonvalue.Value, location string) Errors {
	v, errs := deref(m, instance, location)
	if errs != nil {
		return errs
	}
	s, ok := v.(jsonvalue.String)
	if !ok {
		return nil
	}
	if n := utf8.RuneCountInString(string(s)); n > m.Limit {
		return fail(m, location, fmt.Sprintf("length %d is greater than %d", n, m.Limit))
	}
	return nil
}

// MinLengthBuilder builds the minLength keyword.
func MinLengthBuilder() Builder {
	return Keyword("minLength", func(fragment jsonvalue.Value, ctx *Context) (Constraint, error) {
		n, err := lengthLimit("minLength", fragment, ctx)
		if err != nil {
			return nil, err
		}
		return &MinLength{Limit: n}, nil
	})
}

// MaxLengthBuilder builds the maxLength keyword.
func MaxLengthBuilder() Builder {
	return Keyword("maxLength", func(fragment jsonvalue.Value, ctx *Context) (Constraint, error) {
		n, err := lengthLimit("maxLength", fragment, ctx)
		if err != nil {
			return nil, err
		}
		return &MaxLength{Limit: n}, nil
	})
}

// lengthLimit accepts only integer literals: 2.0 is rejected.
func lengthLimit(keyword string, fragment jsonvalue.Value, ctx *Context) (int, error) {
	num, ok := fragment.(jsonvalue.Number)
	if !ok {
		return 0, &ConstraintParseError{Keyword: keyword, Pointer: ctx.pointer(), Message: "value must be an integer"}
	}
	n, ok := num.Int64()
	if !ok {
		if num.IsIntegral() && math.Abs(num.Float64()) >= math.MaxInt64 {
			return 0, &ConstraintParseError{Keyword: keyword, Pointer: ctx.pointer(),
				Message: fmt.Sprintf("value %s is out of range", num)}
		}
		return 0, &ConstraintParseError{Keyword: keyword, Pointer: ctx.pointer(),
			Message: fmt.Sprintf("value must be an integer, got %s", num)}
	}
	if n < 0 {
		return 0, &ConstraintParseError{Keyword: keyword, Pointer: ctx.pointer(),
			Message: "value must be greater than or equal to 0, got " + strconv.FormatInt(n, 10)}
	}
	return int(n), nil
}

// Pattern requires strings to match Source somewhere. Other instances are
// accepted.
type Pattern struct {
	Source  string
	matcher Matcher
}

// NewPattern compiles source with engine.
func NewPattern(source string, engine RegexpEngine, timeout time.Duration) (*Pattern, error) {
	m, err := engine.Compile(source, timeout)
	if err != nil {
		return nil, err
	}
	return &Pattern{Source: source, matcher: m}, nil
}

func (p *Pattern) Keyword() string { return "pattern" }

func (p *Pattern) Validate(instance jsonvalue.Value, location string) Errors {
	v, errs := deref(p, instance, location)
	if errs != nil {
		return errs
	}
	s, ok := v.(jsonvalue.String)
	if !ok {
		return nil
	}
	matched, err := p.matcher.MatchString(string(s))
	if err != nil {
		return fail(p, location, err.Error())
	}
	if !matched {
		return fail(p, location, fmt.Sprintf("%q does not match %q", string(s), p.Source))
	}
	return nil
}

// PatternBuilder builds the pattern keyword with the context's engine.
func PatternBuilder() Builder {
	return Keyword("pattern", func(fragment jsonvalue.Value, ctx *Context) (Constraint, error) {
		src, ok := fragment.(jsonvalue.String)
		if !ok {
			return nil, &ConstraintParseError{Keyword: "pattern", Pointer: ctx.pointer(), Message: "value must be a string"}
		}
		p, err := NewPattern(string(src), ctx.engine(), ctx.timeout())
		if err != nil {
			return nil, &ConstraintParseError{
				Keyword: "pattern",
				Pointer: ctx.pointer(),
				Message: fmt.Sprintf("invalid %s regular expression", ctx.engine().Name()),
				Err:     err,
			}
		}
		return p, nil
	})
}
