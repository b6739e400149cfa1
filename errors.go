package jsonschema

import (
	"errors"
	"fmt"

	"github.com/albertocavalcante/go-jsonschema/constraint"
	"github.com/albertocavalcante/go-jsonschema/refcache"
)

// Sentinel errors for common loading and validation failures.
var (
	// ErrResourceNotFound indicates a schema resource could not be fetched.
	ErrResourceNotFound = refcache.ErrResourceNotFound

	// ErrDecode indicates a resource is not a well-formed document.
	ErrDecode = refcache.ErrDecode

	// ErrPointerNotFound indicates a $ref fragment that does not resolve.
	ErrPointerNotFound = refcache.ErrPointerNotFound

	// ErrCyclicReference indicates a chain of references that never reaches
	// a value.
	ErrCyclicReference = refcache.ErrCyclicReference

	// ErrInvalidReference indicates a $ref that is not a usable URI reference.
	ErrInvalidReference = refcache.ErrInvalidReference

	// ErrConstraintParse indicates a schema keyword with an unacceptable value.
	ErrConstraintParse = constraint.ErrConstraintParse

	// ErrInvalidPointer indicates a validation pointer that does not address
	// a schema object.
	ErrInvalidPointer = errors.New("invalid schema pointer")
)

// ReferenceError names the $ref site a loading failure was met at.
type ReferenceError = refcache.ReferenceError

// InvalidPointerError reports a ValidateAt pointer that cannot be used.
type InvalidPointerError struct {
	URI     string
	Pointer string
	Err     error
}

func (e *InvalidPointerError) Error() string {
	return fmt.Sprintf("could not resolve pointer %q in %s: %v", e.Pointer, e.URI, e.Err)
}

func (e *InvalidPointerError) Unwrap() []error {
	return []error{ErrInvalidPointer, e.Err}
}

// Errors is the result of a validation; it is empty when the instance is
// valid.
type Errors = constraint.Errors

// ValidationError is one violated constraint.
type ValidationError = constraint.ValidationError
