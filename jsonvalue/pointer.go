package jsonvalue

import (
	"strconv"
	"strings"

	"github.com/qri-io/jsonpointer"
)

// Lookup evaluates an RFC 6901 JSON Pointer against v. The pointer may be
// given bare ("/a/0") or as a URI fragment ("#/a/0"). References met on the
// way are followed; the addressed value itself is returned as found, which
// may be a *Ref.
func Lookup(v Value, pointer string) (Value, error) {
	tokens, err := parsePointer(pointer)
	if err != nil {
		return nil, err
	}

	cur := v
	for _, tok := range tokens {
		cur, err = Deref(cur)
		if err != nil {
			return nil, err
		}
		switch c := cur.(type) {
		case *Object:
			member, ok := c.Get(tok)
			if !ok {
				return nil, &PointerError{Pointer: pointer, Token: tok, Reason: "no such member"}
			}
			cur = member
		case Array:
			idx, ok := arrayIndex(tok)
			if !ok {
				return nil, &PointerError{Pointer: pointer, Token: tok, Reason: "invalid array index"}
			}
			if idx >= len(c) {
				return nil, &PointerError{Pointer: pointer, Token: tok, Reason: "array index out of range"}
			}
			cur = c[idx]
		default:
			return nil, &PointerError{Pointer: pointer, Token: tok, Reason: "cannot descend into " + kindOf(cur).String()}
		}
	}
	return cur, nil
}

// arrayIndex parses a reference token as an array index. Leading zeros and
// the "-" past-the-end token are rejected.
func arrayIndex(tok string) (int, bool) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return n, true
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

// Child appends an unescaped reference token to a pointer.
func Child(pointer, token string) string {
	return pointer + jsonpointer.Pointer{token}.String()
}

// ChildIndex appends an array index to a pointer.
func ChildIndex(pointer string, idx int) string {
	return Child(pointer, strconv.Itoa(idx))
}

// Tokens splits a pointer into its unescaped reference tokens.
func Tokens(pointer string) ([]string, error) {
	return parsePointer(pointer)
}

// parsePointer accepts "", "#" or a pointer starting with "/", optionally
// behind a single "#". Anything else, such as "defs/a" or "#anchor", is not a
// JSON Pointer and must not be read as the whole document.
func parsePointer(pointer string) ([]string, error) {
	p := strings.TrimPrefix(pointer, "#")
	if p == "" {
		return nil, nil
	}
	if p[0] != '/' {
		return nil, &PointerError{Pointer: pointer, Reason: "not a JSON Pointer: must be empty or start with /"}
	}
	tokens, err := jsonpointer.Parse(p)
	if err != nil {
		return nil, &PointerError{Pointer: pointer, Reason: err.Error()}
	}
	return []string(tokens), nil
}
