package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/albertocavalcante/go-jsonschema/constraint"
	"github.com/albertocavalcante/go-jsonschema/fetch"
	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
)

func mustDecode(t *testing.T, s string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Decode([]byte(s))
	if err != nil {
		t.Fatalf("Decode(%s) failed: %v", s, err)
	}
	return v
}

// TestCompileBytes_EndToEnd tests a compiled string schema against instances
func TestCompileBytes_EndToEnd(t *testing.T) {
	schema, err := CompileBytes(context.Background(), "mem://s/name.json",
		[]byte(`{"type": "string", "minLength": 2, "maxLength": 4}`))
	if err != nil {
		t.Fatalf("CompileBytes failed: %v", err)
	}

	tests := []struct {
		instance string
		want     []string
	}{
		{`"ab"`, nil},
		{`"abcd"`, nil},
		{`"a"`, []string{"minLength"}},
		{`""`, []string{"minLength"}},
		{`"abcde"`, []string{"maxLength"}},
		{`5`, []string{"type"}},
		{`null`, []string{"type"}},
		{`"äöü"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.instance, func(t *testing.T) {
			errs := schema.Validate(mustDecode(t, tt.instance))
			if diff := cmp.Diff(tt.want, errs.Keywords(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("keywords mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestCompile_AcrossResources tests references between in-memory resources
func TestCompile_AcrossResources(t *testing.T) {
	resources := map[string][]byte{
		"mem://s/person.json": []byte(`{
			"type": "object",
			"definitions": {
				"name": {"$ref": "common.json#/definitions/shortString"},
				"code": {"$ref": "#/definitions/upper"},
				"upper": {"type": "string", "pattern": "^[A-Z]+$"}
			}
		}`),
		"mem://s/common.json": []byte(`{
			"definitions": {"shortString": {"type": "string", "maxLength": 3}}
		}`),
	}
	l, err := NewLoader(WithResources(resources))
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	schema, err := l.Compile(context.Background(), "mem://s/person.json")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if errs := schema.Validate(mustDecode(t, `{}`)); !errs.Valid() {
		t.Errorf("root rejected object: %v", errs)
	}

	tests := []struct {
		pointer  string
		instance string
		valid    bool
	}{
		{"/definitions/name", `"bob"`, true},
		{"/definitions/name", `"robert"`, false},
		{"#/definitions/name", `3`, false},
		{"/definitions/code", `"ABC"`, true},
		{"/definitions/code", `"abc"`, false},
		{"/", `[]`, false},
		{"", `{}`, true},
		{"#", `{}`, true},
	}
	for _, tt := range tests {
		errs, err := schema.ValidateAt(mustDecode(t, tt.instance), tt.pointer)
		if err != nil {
			t.Errorf("ValidateAt(%s, %q) failed: %v", tt.instance, tt.pointer, err)
			continue
		}
		if errs.Valid() != tt.valid {
			t.Errorf("ValidateAt(%s, %q) valid = %v, want %v (%v)", tt.instance, tt.pointer, errs.Valid(), tt.valid, errs)
		}
	}

	if diff := cmp.Diff([]string{"mem://s/common.json", "mem://s/person.json"}, l.Resources()); diff != "" {
		t.Errorf("Resources mismatch (-want +got):\n%s", diff)
	}
	g := schema.Graph()
	if !g.Contains("mem://s/common.json") || g.Root != "mem://s/person.json" {
		t.Errorf("Graph = %+v", g)
	}
}

// TestValidateAt_InvalidPointer tests pointers that do not reach a schema
func TestValidateAt_InvalidPointer(t *testing.T) {
	schema, err := CompileBytes(context.Background(), "mem://s/a.json",
		[]byte(`{"definitions": {"n": 5, "ok": {"type": "null"}}}`))
	if err != nil {
		t.Fatal(err)
	}

	for _, ptr := range []string{"/definitions/missing", "/definitions/n", "/definitions", "definitions", "#definitions/ok", "nope", "##/definitions/ok"} {
		_, err := schema.ValidateAt(jsonvalue.Null{}, ptr)
		if ptr == "/definitions" {
			// An object of subschemas is itself an object.
			if err != nil {
				t.Errorf("ValidateAt(%q) failed: %v", ptr, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidPointer) {
			t.Errorf("ValidateAt(%q) error = %v, want ErrInvalidPointer", ptr, err)
		}
		var pe *InvalidPointerError
		if !errors.As(err, &pe) || pe.URI != "mem://s/a.json" {
			t.Errorf("ValidateAt(%q) error = %#v", ptr, err)
		}
	}
}

// TestValidateAt_Forms tests the accepted spellings of a pointer
func TestValidateAt_Forms(t *testing.T) {
	schema, err := CompileBytes(context.Background(), "mem://s/a.json",
		[]byte(`{"type": "integer", "definitions": {"s": {"type": "string"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	instance := jsonvalue.String("x")

	tests := []struct {
		pointer string
		valid   bool
	}{
		{"", false},
		{"#", false},
		{"/", false},
		{"/definitions/s", true},
		{"#/definitions/s", true},
	}
	for _, tt := range tests {
		errs, err := schema.ValidateAt(instance, tt.pointer)
		if err != nil {
			t.Errorf("ValidateAt(%q) failed: %v", tt.pointer, err)
			continue
		}
		if errs.Valid() != tt.valid {
			t.Errorf("ValidateAt(%q) valid = %v, want %v (%v)", tt.pointer, errs.Valid(), tt.valid, errs)
		}
	}
}

// TestCompile_PlainNameFragmentNotAliased tests that a plain-name fragment
// is rejected rather than read as the whole document
func TestCompile_PlainNameFragmentNotAliased(t *testing.T) {
	_, err := CompileBytes(context.Background(), "mem://s/a.json",
		[]byte(`{"type": "string", "properties": {"x": {"$ref": "#foo"}}}`))
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("CompileBytes error = %v, want ErrInvalidReference", err)
	}
	var refErr *ReferenceError
	if !errors.As(err, &refErr) || refErr.Ref != "#foo" {
		t.Errorf("error = %#v, want *ReferenceError for #foo", err)
	}
}

// TestValidateAt_BrokenSubschema tests that subschemas compile on demand
func TestValidateAt_BrokenSubschema(t *testing.T) {
	schema, err := CompileBytes(context.Background(), "mem://s/a.json",
		[]byte(`{"definitions": {"bad": {"type": "decimal"}}}`))
	if err != nil {
		t.Fatalf("CompileBytes failed: %v", err)
	}
	_, err = schema.ValidateAt(jsonvalue.Null{}, "/definitions/bad")
	if !errors.Is(err, ErrConstraintParse) {
		t.Errorf("ValidateAt error = %v, want ErrConstraintParse", err)
	}
}

// TestValidateBytes tests decoding instances
func TestValidateBytes(t *testing.T) {
	schema, err := CompileBytes(context.Background(), "mem://s/a.json", []byte(`{"type": "array"}`))
	if err != nil {
		t.Fatal(err)
	}
	errs, err := schema.ValidateBytes([]byte(`[1, 2]`))
	if err != nil || !errs.Valid() {
		t.Errorf("ValidateBytes([1, 2]) = %v, %v", errs, err)
	}
	if _, err := schema.ValidateBytes([]byte(`[1,`)); !errors.Is(err, ErrDecode) {
		t.Errorf("ValidateBytes(malformed) error = %v, want ErrDecode", err)
	}
}

// TestValidateAll tests concurrent validation keeps order
func TestValidateAll(t *testing.T) {
	schema, err := CompileBytes(context.Background(), "mem://s/a.json",
		[]byte(`{"type": "string", "maxLength": 2}`), WithConcurrency(3))
	if err != nil {
		t.Fatal(err)
	}

	var instances []jsonvalue.Value
	var want []bool
	for i := 0; i < 50; i++ {
		s := strings.Repeat("x", i%4)
		instances = append(instances, jsonvalue.String(s))
		want = append(want, len(s) <= 2)
	}
	results, err := schema.ValidateAll(context.Background(), instances)
	if err != nil {
		t.Fatalf("ValidateAll failed: %v", err)
	}
	for i, errs := range results {
		if errs.Valid() != want[i] {
			t.Errorf("instance %d valid = %v, want %v", i, errs.Valid(), want[i])
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := schema.ValidateAll(ctx, instances); !errors.Is(err, context.Canceled) {
		t.Errorf("ValidateAll with cancelled context error = %v", err)
	}
}

// TestCompile_Errors tests error classification
func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name      string
		resources map[string]string
		want      error
	}{
		{"missing", nil, ErrResourceNotFound},
		{"malformed", map[string]string{"mem://s/a.json": `{"type":`}, ErrDecode},
		{"missing dependency", map[string]string{"mem://s/a.json": `{"$ref": "b.json"}`}, ErrResourceNotFound},
		{"bad pointer", map[string]string{"mem://s/a.json": `{"x": {"$ref": "#/nope"}}`}, ErrPointerNotFound},
		{"cycle", map[string]string{"mem://s/a.json": `{"x": {"$ref": "#/x"}}`}, ErrCyclicReference},
		{"plain-name fragment", map[string]string{"mem://s/a.json": `{"x": {"$ref": "#foo"}}`}, ErrInvalidReference},
		{"bad keyword", map[string]string{"mem://s/a.json": `{"minLength": 1.5}`}, ErrConstraintParse},
		{"non-object root", map[string]string{"mem://s/a.json": `[1]`}, ErrConstraintParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resources := map[string][]byte{}
			for k, v := range tt.resources {
				resources[k] = []byte(v)
			}
			_, err := Compile(context.Background(), "mem://s/a.json",
				WithResources(resources), WithFetcher(fetch.NewMemoryFetcher(nil)))
			if !errors.Is(err, tt.want) {
				t.Errorf("Compile error = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestNewLoader_InvalidOptions tests option validation
func TestNewLoader_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"negative timeout", []Option{WithTimeout(-time.Second)}},
		{"negative pattern timeout", []Option{WithPatternTimeout(-1)}},
		{"negative concurrency", []Option{WithConcurrency(-2)}},
		{"nil fetcher", []Option{WithFetcher(nil)}},
		{"nil registry", []Option{WithRegistry(nil)}},
		{"nil engine", []Option{WithRegexpEngine(nil)}},
		{"fetcher with http client", []Option{WithFetcher(fetch.NewMemoryFetcher(nil)), WithHTTPClient(http.DefaultClient)}},
		{"relative resource", []Option{WithResources(map[string][]byte{"a.json": nil})}},
		{"ref as id keyword", []Option{WithIDKeyword("$ref")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLoader(tt.opts...); err == nil {
				t.Error("NewLoader succeeded")
			}
		})
	}
}

// TestCompile_HTTP tests loading over HTTP with a shared document cache
func TestCompile_HTTP(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch r.URL.Path {
		case "/root.json":
			fmt.Fprint(w, `{"$ref": "defs.json#/word"}`)
		case "/defs.json":
			fmt.Fprint(w, `{"word": {"type": "string", "pattern": "^\\w+$"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	docs := fetch.NewMemoryCache()
	for i := 0; i < 2; i++ {
		schema, err := Compile(context.Background(), server.URL+"/root.json",
			WithDocumentCache(docs), WithHTTPClient(server.Client()))
		if err != nil {
			t.Fatalf("Compile #%d failed: %v", i, err)
		}
		if !schema.Validate(jsonvalue.String("hello")).Valid() {
			t.Error("word rejected")
		}
		if schema.Validate(jsonvalue.String("two words")).Valid() {
			t.Error("two words accepted")
		}
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("HTTP calls = %d, want 2 (second loader served from cache)", got)
	}
}

// TestLoader_SharesDocuments tests that one loader fetches each resource once
func TestLoader_SharesDocuments(t *testing.T) {
	mem := fetch.NewMemoryFetcher(map[string][]byte{
		"mem://s/a.json": []byte(`{"$ref": "c.json"}`),
		"mem://s/b.json": []byte(`{"$ref": "c.json"}`),
		"mem://s/c.json": []byte(`{"type": "boolean"}`),
	})
	var events []ProgressEvent
	l, err := NewLoader(WithFetcher(mem), WithProgress(func(e ProgressEvent) { events = append(events, e) }))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, u := range []string{"mem://s/a.json", "mem://s/b.json", "mem://s/a.json"} {
		schema, err := l.Compile(ctx, u)
		if err != nil {
			t.Fatalf("Compile(%s) failed: %v", u, err)
		}
		if !schema.Validate(jsonvalue.Bool(true)).Valid() {
			t.Errorf("%s rejected true", u)
		}
	}
	if mem.Count("mem://s/c.json") != 1 {
		t.Errorf("c.json fetched %d times, want 1", mem.Count("mem://s/c.json"))
	}

	hits := 0
	for _, e := range events {
		if e.Type == ProgressCacheHit {
			hits++
		}
	}
	if hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}
}

// TestCompile_CustomRegistry tests WithRegistry and WithRegexpEngine
func TestCompile_CustomRegistry(t *testing.T) {
	nonEmpty := constraint.Keyword("nonEmpty", func(fragment jsonvalue.Value, ctx *constraint.Context) (constraint.Constraint, error) {
		return constraint.MinLengthBuilder().Build(jsonvalue.Int(1), ctx)
	}).When(func(v jsonvalue.Value) bool { return v == jsonvalue.Bool(true) })

	src := []byte(`{"nonEmpty": true, "pattern": "^a"}`)
	schema, err := CompileBytes(context.Background(), "mem://s/a.json", src,
		WithRegistry(constraint.Draft4().With(nonEmpty)), WithRegexpEngine(constraint.RE2{}))
	if err != nil {
		t.Fatalf("CompileBytes failed: %v", err)
	}
	if diff := cmp.Diff([]string{"pattern", "minLength"}, schema.Validate(jsonvalue.String("")).Keywords()); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}
}

// TestDocument tests that references in the document are handles
func TestDocument(t *testing.T) {
	schema, err := CompileBytes(context.Background(), "mem://s/a.json",
		[]byte(`{"id": "http://elsewhere/x.json", "definitions": {"a": {"type": "null"}, "b": {"$ref": "#/definitions/a"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if schema.URI() != "mem://s/a.json" {
		t.Errorf("URI = %s", schema.URI())
	}
	b, err := jsonvalue.Lookup(schema.Document(), "/definitions/b")
	if err != nil {
		t.Fatal(err)
	}
	ref, ok := b.(*jsonvalue.Ref)
	if !ok || ref.Target != "mem://s/a.json#/definitions/a" {
		t.Errorf("definitions/b = %#v, want reference handle", b)
	}
	id, _ := schema.Document().(*jsonvalue.Object).Get("id")
	if id != jsonvalue.String("mem://s/a.json") {
		t.Errorf("id = %v, want rewritten to load uri", id)
	}
}
