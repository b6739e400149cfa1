package refcache

import (
	"errors"
	"fmt"

	"github.com/albertocavalcante/go-jsonschema/docparse"
	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrResourceNotFound indicates a resource could not be fetched.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrDecode indicates a fetched resource is not a well-formed document.
	ErrDecode = docparse.ErrDecode

	// ErrPointerNotFound indicates a reference fragment does not resolve
	// inside its target document.
	ErrPointerNotFound = jsonvalue.ErrPointerNotFound

	// ErrCyclicReference indicates a chain of references that never reaches
	// a value.
	ErrCyclicReference = jsonvalue.ErrCyclicReference

	// ErrInvalidReference indicates a $ref whose text is not a usable URI
	// reference, such as a plain-name fragment.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrNotCached indicates a lookup into a document that is not loaded.
	ErrNotCached = errors.New("resource not cached")
)

// FetchError reports a resource that could not be fetched.
type FetchError struct {
	URI string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("load %s: %v", e.URI, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrResourceNotFound, e.Err} }

// ReferenceError reports a $ref that could not be resolved.
type ReferenceError struct {
	// From locates the $ref: the owning document's key URI and the pointer
	// of the reference object inside it.
	From string
	// Ref is the $ref text as written.
	Ref string
	// Target is the absolute target URI, when it could be computed.
	Target string
	Err    error
}

func (e *ReferenceError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("reference %q at %s: %v", e.Ref, e.From, e.Err)
	}
	return fmt.Sprintf("reference %q at %s to %s: %v", e.Ref, e.From, e.Target, e.Err)
}

func (e *ReferenceError) Unwrap() error { return e.Err }

// NotCachedError reports a pointer lookup into a document that was never
// loaded. It matches both ErrNotCached and ErrResourceNotFound.
type NotCachedError struct {
	URI string
}

func (e *NotCachedError) Error() string {
	return fmt.Sprintf("resource %s not loaded", e.URI)
}

func (e *NotCachedError) Unwrap() []error { return []error{ErrNotCached, ErrResourceNotFound} }
