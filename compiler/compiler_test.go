package compiler

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/albertocavalcante/go-jsonschema/constraint"
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

func keywords(c constraint.Constraint) []string {
	all, ok := c.(*constraint.All)
	if !ok {
		return nil
	}
	out := make([]string, len(all.Children))
	for i, child := range all.Children {
		out[i] = child.Keyword()
	}
	return out
}

// TestBuild_RegistryOrder tests that nodes follow registry order, not
// document order
func TestBuild_RegistryOrder(t *testing.T) {
	doc := mustDecode(t, `{"maxLength": 4, "title": "x", "minLength": 2, "type": "string"}`)
	c, err := New(Config{}).Build(doc)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if diff := cmp.Diff([]string{"type", "minLength", "maxLength"}, keywords(c)); diff != "" {
		t.Errorf("keyword order mismatch (-want +got):\n%s", diff)
	}
}

// TestBuild_Empty tests schemas without recognised keywords
func TestBuild_Empty(t *testing.T) {
	for _, src := range []string{`{}`, `{"description": "anything", "format": "email"}`} {
		c, err := New(Config{}).Build(mustDecode(t, src))
		if err != nil {
			t.Fatalf("Build(%s) failed: %v", src, err)
		}
		if _, ok := c.(constraint.Empty); !ok {
			t.Errorf("Build(%s) = %T, want Empty", src, c)
		}
	}
}

// TestBuild_NonObject tests that only objects are schemas
func TestBuild_NonObject(t *testing.T) {
	for _, src := range []string{`true`, `[]`, `"string"`, `null`} {
		_, err := New(Config{}).Build(mustDecode(t, src))
		if !errors.Is(err, constraint.ErrConstraintParse) {
			t.Errorf("Build(%s) error = %v, want ErrConstraintParse", src, err)
		}
	}
}

// TestBuild_KeywordErrors tests that keyword errors carry keyword and pointer
func TestBuild_KeywordErrors(t *testing.T) {
	doc := mustDecode(t, `{"definitions": {"bad": {"type": "string", "minLength": -1}}}`)
	_, err := New(Config{}).BuildAt(doc, "/definitions/bad")
	var pe *constraint.ConstraintParseError
	if !errors.As(err, &pe) {
		t.Fatalf("BuildAt error = %v, want *ConstraintParseError", err)
	}
	if pe.Keyword != "minLength" || pe.Pointer != "/definitions/bad" {
		t.Errorf("error = %+v", pe)
	}
}

// TestBuildAt_PointerErrors tests missing pointers
func TestBuildAt_PointerErrors(t *testing.T) {
	doc := mustDecode(t, `{"definitions": {}}`)
	for _, ptr := range []string{"/definitions/missing", "definitions", "#definitions"} {
		if _, err := New(Config{}).BuildAt(doc, ptr); !errors.Is(err, jsonvalue.ErrPointerNotFound) {
			t.Errorf("BuildAt(%q) error = %v, want ErrPointerNotFound", ptr, err)
		}
	}
}

// TestBuildAt_Cache tests memoisation per schema object
func TestBuildAt_Cache(t *testing.T) {
	doc := mustDecode(t, `{"definitions": {"a": {"type": "string"}, "b": {"type": "string"}}}`)
	target := mustDecode(t, `{"type": "integer"}`)
	doc.(*jsonvalue.Object).Set("alias", jsonvalue.NewRef("#/target", "mem://s/a.json#/target", stub{"mem://s/a.json#/target": target}))

	c := New(Config{})
	first, err := c.BuildAt(doc, "/definitions/a")
	if err != nil {
		t.Fatal(err)
	}
	second, _ := c.BuildAt(doc, "/definitions/a")
	if first != second {
		t.Error("BuildAt did not reuse the cached tree")
	}
	other, _ := c.BuildAt(doc, "/definitions/b")
	if other == first {
		t.Error("distinct schema objects share a tree")
	}

	viaRef, err := c.BuildAt(doc, "/alias")
	if err != nil {
		t.Fatalf("BuildAt through reference failed: %v", err)
	}
	if !viaRef.Validate(jsonvalue.Int(3), "").Valid() {
		t.Error("aliased integer schema rejected 3")
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
}

type stub map[string]jsonvalue.Value

func (s stub) Pointer(target string) (jsonvalue.Value, error) {
	if v, ok := s[target]; ok {
		return v, nil
	}
	return nil, errors.New("missing " + target)
}

// TestBuild_SkipsDeclinedKeywords tests CanBuild
func TestBuild_SkipsDeclinedKeywords(t *testing.T) {
	onlyStrings := func(v jsonvalue.Value) bool {
		_, ok := v.(jsonvalue.String)
		return ok
	}
	reg := constraint.Draft4().With(constraint.TypeBuilder().(*constraint.KeywordBuilder).When(onlyStrings))

	c, err := New(Config{Registry: reg}).Build(mustDecode(t, `{"type": ["string", "null"], "minLength": 1}`))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if diff := cmp.Diff([]string{"minLength"}, keywords(c)); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}
}

// TestBuild_Extension tests a caller-registered keyword
func TestBuild_Extension(t *testing.T) {
	enum := constraint.Keyword("enum", func(fragment jsonvalue.Value, ctx *constraint.Context) (constraint.Constraint, error) {
		arr, ok := fragment.(jsonvalue.Array)
		if !ok || len(arr) == 0 {
			return nil, errors.New("enum must be a non-empty array")
		}
		return enumC(arr), nil
	})
	comp := New(Config{Registry: constraint.Draft4().With(enum)})

	c, err := comp.Build(mustDecode(t, `{"type": "string", "enum": ["a", "b"]}`))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !c.Validate(jsonvalue.String("a"), "").Valid() {
		t.Error("enum rejected a member")
	}
	errs := c.Validate(jsonvalue.String("c"), "")
	if diff := cmp.Diff([]string{"enum"}, errs.Keywords()); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}

	_, err = New(Config{Registry: constraint.Draft4().With(enum)}).Build(mustDecode(t, `{"enum": []}`))
	var pe *constraint.ConstraintParseError
	if !errors.As(err, &pe) || pe.Keyword != "enum" {
		t.Errorf("Build error = %v, want ConstraintParseError for enum", err)
	}
}

type enumC jsonvalue.Array

func (enumC) Keyword() string { return "enum" }

func (e enumC) Validate(instance jsonvalue.Value, location string) constraint.Errors {
	for _, v := range e {
		if jsonvalue.Equal(v, instance) {
			return nil
		}
	}
	return constraint.Errors{{Constraint: e, Keyword: "enum", Message: "not an allowed value", Location: location}}
}

// TestBuild_RE2Engine tests engine selection
func TestBuild_RE2Engine(t *testing.T) {
	doc := mustDecode(t, `{"pattern": "^(?=a)"}`)
	if _, err := New(Config{}).Build(doc); err != nil {
		t.Errorf("ECMAScript rejected lookahead: %v", err)
	}
	if _, err := New(Config{Engine: constraint.RE2{}}).Build(doc); !errors.Is(err, constraint.ErrConstraintParse) {
		t.Errorf("RE2 error = %v, want ErrConstraintParse", err)
	}
}
