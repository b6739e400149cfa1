package docparse

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/bazelbuild/buildtools/build"

	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
)

// Starlark parses a Starlark file whose only statement is a dict or list
// literal, optionally bound to a name:
//
//	SCHEMA = {
//	    "type": "string",
//	    "minLength": 2,
//	}
//
// Strings, ints, floats, True, False, None, lists, tuples and dicts with
// string keys are accepted. Calls, comprehensions and operators other than
// unary minus are not.
type Starlark struct{}

func (Starlark) Format() string { return "starlark" }

func (Starlark) Parse(data []byte) (jsonvalue.Value, error) {
	f, err := build.ParseDefault("schema.star", data)
	if err != nil {
		return nil, err
	}

	var expr build.Expr
	for _, stmt := range f.Stmt {
		if _, ok := stmt.(*build.CommentBlock); ok {
			continue
		}
		if expr != nil {
			return nil, errors.New("more than one top-level statement")
		}
		expr = stmt
		if assign, ok := stmt.(*build.AssignExpr); ok {
			if _, ok := assign.LHS.(*build.Ident); !ok || assign.Op != "=" {
				return nil, errors.New("top-level assignment must bind a single name")
			}
			expr = assign.RHS
		}
	}
	if expr == nil {
		return nil, errors.New("no value in file")
	}
	return starlarkValue(expr)
}

func starlarkValue(expr build.Expr) (jsonvalue.Value, error) {
	switch e := expr.(type) {
	case *build.StringExpr:
		return jsonvalue.String(e.Value), nil
	case *build.LiteralExpr:
		return starlarkNumber(e.Token)
	case *build.Ident:
		switch e.Name {
		case "True":
			return jsonvalue.Bool(true), nil
		case "False":
			return jsonvalue.Bool(false), nil
		case "None":
			return jsonvalue.Null{}, nil
		}
		return nil, fmt.Errorf("line %d: unresolved name %s", e.NamePos.Line, e.Name)
	case *build.UnaryExpr:
		if e.Op != "-" && e.Op != "+" {
			return nil, fmt.Errorf("unsupported operator %q", e.Op)
		}
		lit, ok := e.X.(*build.LiteralExpr)
		if !ok {
			return nil, fmt.Errorf("operator %q needs a number", e.Op)
		}
		return starlarkNumber(e.Op + lit.Token)
	case *build.ParenExpr:
		return starlarkValue(e.X)
	case *build.ListExpr:
		return starlarkList(e.List)
	case *build.TupleExpr:
		return starlarkList(e.List)
	case *build.DictExpr:
		obj := jsonvalue.NewObject()
		for _, kv := range e.List {
			key, ok := kv.Key.(*build.StringExpr)
			if !ok {
				return nil, fmt.Errorf("dict key must be a string, got %T", kv.Key)
			}
			if _, dup := obj.Get(key.Value); dup {
				return nil, fmt.Errorf("duplicate dict key %q", key.Value)
			}
			v, err := starlarkValue(kv.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(key.Value, v)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported expression %T", expr)
	}
}

func starlarkList(items []build.Expr) (jsonvalue.Value, error) {
	arr := make(jsonvalue.Array, 0, len(items))
	for _, item := range items {
		v, err := starlarkValue(item)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	return arr, nil
}

// starlarkNumber accepts decimal, 0x, 0o and 0b integers and float literals.
func starlarkNumber(tok string) (jsonvalue.Value, error) {
	if n, err := strconv.ParseInt(tok, 0, 64); err == nil {
		return jsonvalue.Int(n), nil
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number literal %q", tok)
	}
	return jsonvalue.Float(f), nil
}
