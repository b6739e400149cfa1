package constraint

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrConstraintParse indicates a schema keyword whose value is not
	// acceptable for that keyword.
	ErrConstraintParse = errors.New("invalid schema keyword")

	// ErrUnknownType indicates a type name outside the seven primitive
	// types.
	ErrUnknownType = errors.New("unknown type name")
)

// ConstraintParseError reports a schema keyword that cannot be compiled.
type ConstraintParseError struct {
	Keyword string
	// Pointer locates the schema object holding the keyword.
	Pointer string
	Message string
	Err     error
}

func (e *ConstraintParseError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("schema #%s: keyword %q: %s", e.Pointer, e.Keyword, msg)
}

func (e *ConstraintParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConstraintParse}
	}
	return []error{ErrConstraintParse, e.Err}
}

// ValidationError is one violated constraint.
type ValidationError struct {
	Constraint Constraint
	Keyword    string
	Message    string
	// Location is the JSON Pointer of the failing value inside the
	// instance. The root is "".
	Location string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("#%s: %s: %s", e.Location, e.Keyword, e.Message)
}

// Errors is the result of a validation. An empty result means the instance
// is valid and prints as the empty string; use Err to get a nil error.
type Errors []*ValidationError

func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e))
	for _, err := range e {
		fmt.Fprintf(&b, "\n  - %s", err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying errors for errors.Is/As compatibility.
func (e Errors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}

// Valid reports whether no constraint was violated.
func (e Errors) Valid() bool { return len(e) == 0 }

// Err returns nil when there are no errors, otherwise e.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Keywords returns the keyword of each error, in order.
func (e Errors) Keywords() []string {
	out := make([]string, len(e))
	for i, err := range e {
		out[i] = err.Keyword
	}
	return out
}
