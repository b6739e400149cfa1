package jsonvalue

import (
	"errors"
	"fmt"
)

// Sentinel errors for value decoding and navigation.
var (
	// ErrDecode indicates the input is not a well-formed JSON document.
	ErrDecode = errors.New("json decode error")

	// ErrPointerNotFound indicates a JSON Pointer does not address a value.
	ErrPointerNotFound = errors.New("pointer not found")

	// ErrCyclicReference indicates a chain of references never reaches a value.
	ErrCyclicReference = errors.New("cyclic reference")
)

// DecodeError reports malformed JSON input.
type DecodeError struct {
	// Offset is the byte offset of the failure, when known.
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("json decode error at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("json decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// PointerError reports a pointer token that does not resolve.
type PointerError struct {
	Pointer string
	// Token is the first unresolved reference token.
	Token string
	// Reason is a short explanation, such as "no such member".
	Reason string
}

func (e *PointerError) Error() string {
	return fmt.Sprintf("pointer %q: token %q: %s", e.Pointer, e.Token, e.Reason)
}

func (e *PointerError) Unwrap() error { return ErrPointerNotFound }

// CycleError reports a reference chain that loops back on itself.
type CycleError struct {
	Target string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic reference through %s", e.Target)
}

func (e *CycleError) Unwrap() error { return ErrCyclicReference }

// UnboundRefError reports a Ref that was never attached to a resolver.
type UnboundRefError struct {
	Target string
}

func (e *UnboundRefError) Error() string {
	return fmt.Sprintf("reference to %s is not bound to a resolver", e.Target)
}
