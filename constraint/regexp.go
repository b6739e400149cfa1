package constraint

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultPatternTimeout bounds a single ECMAScript pattern match.
const DefaultPatternTimeout = time.Second

// ErrPatternTimeout is returned by a Matcher whose match ran out of time.
var ErrPatternTimeout = errors.New("pattern match timed out")

// Matcher reports whether a pattern matches anywhere in s.
type Matcher interface {
	MatchString(s string) (bool, error)
}

// RegexpEngine compiles pattern keywords.
type RegexpEngine interface {
	Name() string
	Compile(pattern string, timeout time.Duration) (Matcher, error)
}

// ECMAScript compiles patterns with the ECMA 262 dialect JSON Schema
// prescribes, including lookaround and backreferences.
type ECMAScript struct{}

func (ECMAScript) Name() string { return "ecmascript" }

func (ECMAScript) Compile(pattern string, timeout time.Duration) (Matcher, error) {
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return ecmaMatcher{re}, nil
}

type ecmaMatcher struct {
	re *regexp2.Regexp
}

func (m ecmaMatcher) MatchString(s string) (bool, error) {
	ok, err := m.re.MatchString(s)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPatternTimeout, err)
	}
	return ok, nil
}

// RE2 compiles patterns with the standard library engine. Matching runs in
// linear time, so the timeout is ignored, but ECMAScript-only syntax such as
// lookahead fails to compile.
type RE2 struct{}

func (RE2) Name() string { return "re2" }

func (RE2) Compile(pattern string, _ time.Duration) (Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return re2Matcher{re}, nil
}

type re2Matcher struct {
	re *regexp.Regexp
}

func (m re2Matcher) MatchString(s string) (bool, error) {
	return m.re.MatchString(s), nil
}

// EngineByName returns the engine called name: "ecmascript" or "re2".
func EngineByName(name string) (RegexpEngine, error) {
	switch name {
	case "", "ecmascript":
		return ECMAScript{}, nil
	case "re2":
		return RE2{}, nil
	}
	return nil, fmt.Errorf("unknown regexp engine %q", name)
}
