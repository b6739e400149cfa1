package docparse

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
)

func jsonNumber(s string) json.Number { return json.Number(s) }

func plain(t *testing.T, v jsonvalue.Value) any {
	t.Helper()
	x, err := jsonvalue.Interface(v)
	if err != nil {
		t.Fatalf("Interface failed: %v", err)
	}
	return x
}

func TestForURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"http://ex.com/a.json", "json"},
		{"http://ex.com/a.json#/defs/x", "json"},
		{"http://ex.com/a", "json"},
		{"file:///tmp/schema.yaml", "yaml"},
		{"file:///tmp/schema.YML", "yaml"},
		{"file:///tmp/schema.star", "starlark"},
		{"https://ex.com/defs.bzl?rev=2", "starlark"},
		{"schemas/a.sky", "starlark"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			if got := ForURI(tt.uri).Format(); got != tt.want {
				t.Errorf("ForURI(%q) = %s, want %s", tt.uri, got, tt.want)
			}
		})
	}
}

func TestJSON_KeepsOrder(t *testing.T) {
	v, err := JSON{}.Parse([]byte(`{"z": 1, "a": 2, "m": 3}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	obj := v.(*jsonvalue.Object)
	if diff := cmp.Diff([]string{"z", "a", "m"}, obj.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestYAML(t *testing.T) {
	data := []byte(`
type: object
properties:
  name:
    type: string
    minLength: 2
  tags:
    - a
    - b
`)
	v, err := YAML{}.Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "minLength": jsonNumber("2")},
			"tags": []any{"a", "b"},
		},
	}
	if diff := cmp.Diff(want, plain(t, v)); diff != "" {
		t.Errorf("YAML mismatch (-want +got):\n%s", diff)
	}
}

func TestStarlark(t *testing.T) {
	data := []byte(`# Person schema
PERSON = {
    "type": ["object", None],
    "minLength": 2,
    "maxLength": 0x10,
    "ratio": -1.5,
    "strict": True,
    "tags": ("a", "b"),
}
`)
	v, err := Starlark{}.Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	obj := v.(*jsonvalue.Object)
	if diff := cmp.Diff([]string{"type", "minLength", "maxLength", "ratio", "strict", "tags"}, obj.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{
		"type":      []any{"object", nil},
		"minLength": jsonNumber("2"),
		"maxLength": jsonNumber("16"),
		"ratio":     jsonNumber("-1.5"),
		"strict":    true,
		"tags":      []any{"a", "b"},
	}
	if diff := cmp.Diff(want, plain(t, v)); diff != "" {
		t.Errorf("Starlark mismatch (-want +got):\n%s", diff)
	}
}

func TestStarlark_BareList(t *testing.T) {
	v, err := Starlark{}.Parse([]byte(`["a", 1]`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diff := cmp.Diff([]any{"a", jsonNumber("1")}, plain(t, v)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStarlark_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", "# nothing here\n"},
		{"call", `load("x")`},
		{"two statements", "A = {}\nB = {}\n"},
		{"non-string key", `{1: "a"}`},
		{"duplicate key", `{"a": 1, "a": 2}`},
		{"free name", `{"a": foo}`},
		{"binary op", `{"a": 1 + 2}`},
		{"syntax", `{"a": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (Starlark{}).Parse([]byte(tt.src)); err == nil {
				t.Errorf("Parse(%q) succeeded", tt.src)
			}
		})
	}
}

func TestDecode_WrapsErrors(t *testing.T) {
	tests := []struct {
		parser Parser
		data   string
	}{
		{JSON{}, `{"a": }`},
		{YAML{}, "a: [1, 2\n"},
		{Starlark{}, `{"a": `},
	}
	for _, tt := range tests {
		t.Run(tt.parser.Format(), func(t *testing.T) {
			_, err := Decode(tt.parser, "mem://doc", []byte(tt.data))
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("Decode error = %v, want ErrDecode", err)
			}
			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Fatalf("Decode error %T is not *DecodeError", err)
			}
			if decErr.URI != "mem://doc" || decErr.Format != tt.parser.Format() {
				t.Errorf("DecodeError = %+v", decErr)
			}
		})
	}
}
