package uri

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		base string
		ref  string
		want string
	}{
		{"http://ex.com/a.json", "b.json#/foo", "http://ex.com/b.json#/foo"},
		{"http://ex.com/dir/a.json", "../b.json", "http://ex.com/b.json"},
		{"http://ex.com/a.json", "#/defs/x", "http://ex.com/a.json#/defs/x"},
		{"http://ex.com/a.json#/old", "#/new", "http://ex.com/a.json#/new"},
		{"http://ex.com/a.json", "https://other.org/c.json#/d", "https://other.org/c.json#/d"},
		{"http://ex.com/a.json", "/root.json", "http://ex.com/root.json"},
		{"file:///schemas/a.json", "sub/b.json", "file:///schemas/sub/b.json"},
	}
	for _, tt := range tests {
		base := MustParse(tt.base)
		got, err := base.Resolve(tt.ref)
		if err != nil {
			t.Errorf("Resolve(%q, %q) failed: %v", tt.base, tt.ref, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://ex.com/a.json", "http://ex.com/a.json"},
		{"http://ex.com/a.json#/defs/x", "http://ex.com/a.json"},
		{"http://ex.com/a.json?v=2#/defs/x", "http://ex.com/a.json"},
		{"file:///tmp/s.json#", "file:///tmp/s.json"},
	}
	for _, tt := range tests {
		if got := MustParse(tt.input).Key().String(); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestKey_CacheEquivalence(t *testing.T) {
	a := MustParse("http://ex.com/a.json?x=1#/p")
	b := MustParse("http://ex.com/a.json#/q")
	if a.Key().String() != b.Key().String() {
		t.Errorf("Key(%s) != Key(%s)", a, b)
	}
}

func TestFragment(t *testing.T) {
	u := MustParse("http://ex.com/a.json#/defs/a~1b")
	if u.Fragment() != "/defs/a~1b" {
		t.Errorf("Fragment() = %q, want /defs/a~1b", u.Fragment())
	}
	if !u.HasFragment() {
		t.Error("HasFragment() = false, want true")
	}
	if MustParse("http://ex.com/a.json").HasFragment() {
		t.Error("HasFragment() = true for URI without fragment")
	}
}

func TestParse_RejectsNonPointerFragment(t *testing.T) {
	for _, s := range []string{"http://ex.com/a.json#anchor", "#definitions/x", "b.json#a/b"} {
		if _, err := Parse(s); !errors.Is(err, ErrFragmentNotPointer) {
			t.Errorf("Parse(%q) error = %v, want ErrFragmentNotPointer", s, err)
		}
	}
	for _, s := range []string{"http://ex.com/a.json#", "#", "#/definitions/x", "b.json"} {
		if _, err := Parse(s); err != nil {
			t.Errorf("Parse(%q) failed: %v", s, err)
		}
	}
	base := MustParse("http://ex.com/a.json")
	if _, err := base.Resolve("#anchor"); !errors.Is(err, ErrFragmentNotPointer) {
		t.Errorf("Resolve(#anchor) error = %v, want ErrFragmentNotPointer", err)
	}
}

func TestWithFragment(t *testing.T) {
	u := MustParse("http://ex.com/a.json").WithFragment("/x")
	if u.String() != "http://ex.com/a.json#/x" {
		t.Errorf("WithFragment = %q", u)
	}
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")

	u, err := FromPath(path)
	if err != nil {
		t.Fatalf("FromPath failed: %v", err)
	}
	if u.Scheme() != "file" {
		t.Errorf("Scheme() = %q, want file", u.Scheme())
	}
	if !strings.HasSuffix(u.String(), "/schema.json") {
		t.Errorf("FromPath = %q, want suffix /schema.json", u)
	}

	back, err := u.FilePath()
	if err != nil {
		t.Fatalf("FilePath failed: %v", err)
	}
	if back != filepath.Clean(path) {
		t.Errorf("FilePath = %q, want %q", back, path)
	}
}

func TestFilePath_Windows(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("drive letters only map to native paths on Windows")
	}
	got, err := MustParse("file:///C:/schemas/a.json").FilePath()
	if err != nil {
		t.Fatalf("FilePath failed: %v", err)
	}
	if got != `C:\schemas\a.json` {
		t.Errorf("FilePath = %q", got)
	}
}

func TestIsLocalPath(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"schema.json", true},
		{"./dir/schema.json", true},
		{"/abs/schema.json", true},
		{`C:\schemas\a.json`, true},
		{"http://ex.com/a.json", false},
		{"file:///tmp/a.json", false},
	}
	for _, tt := range tests {
		if got := IsLocalPath(tt.input); got != tt.want {
			t.Errorf("IsLocalPath(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
