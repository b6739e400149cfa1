package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decode parses a single JSON document. Object member order is preserved.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, wrapDecodeError(dec, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, wrapDecodeError(dec, err)
	}
	return v, nil
}

func wrapDecodeError(dec *json.Decoder, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &DecodeError{Offset: syntaxErr.Offset, Err: err}
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &DecodeError{Offset: dec.InputOffset(), Err: err}
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		n, err := ParseNumber(t.String())
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", t, err)
		}
		return n, nil
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func decodeObject(dec *json.Decoder) (Value, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	arr := Array{}
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// FromInterface converts plain Go values, as produced by encoding/json, into
// a Value. Map keys are sorted since Go maps carry no order.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return ParseNumber(t.String())
	case float64:
		return Float(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case []any:
		arr := make(Array, 0, len(t))
		for _, item := range t {
			v, err := FromInterface(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case map[string]any:
		obj := NewObject()
		for _, k := range sortedKeys(t) {
			v, err := FromInterface(t[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, v)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unsupported type %T", x)
}

// Interface converts v into plain Go values: map[string]any, []any,
// json.Number, string, bool and nil. References are followed; a cyclic
// structure fails with ErrCyclicReference.
func Interface(v Value) (any, error) {
	return toInterface(v, map[*Object]bool{})
}

func toInterface(v Value, active map[*Object]bool) (any, error) {
	v, err := Deref(v)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case Null:
		return nil, nil
	case Bool:
		return bool(t), nil
	case String:
		return string(t), nil
	case Number:
		return json.Number(t.String()), nil
	case Array:
		out := make([]any, 0, len(t))
		for _, item := range t {
			x, err := toInterface(item, active)
			if err != nil {
				return nil, err
			}
			out = append(out, x)
		}
		return out, nil
	case *Object:
		if active[t] {
			return nil, &CycleError{Target: "(object)"}
		}
		active[t] = true
		defer delete(active, t)
		out := make(map[string]any, t.Len())
		for _, k := range t.Keys() {
			member, _ := t.Get(k)
			x, err := toInterface(member, active)
			if err != nil {
				return nil, err
			}
			out[k] = x
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value %T", v)
}
