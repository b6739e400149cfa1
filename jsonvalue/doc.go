// Package jsonvalue is the in-memory representation shared by schema and
// instance documents.
//
// A Value is one of Null, Bool, Number, String, Array, *Object or *Ref.
// Objects keep member order. Numbers remember whether their literal was
// integral. A *Ref is what a "$ref" marker becomes once the reference cache
// has resolved it: a handle (target URI plus pointer) that is followed through
// a Resolver on access instead of an alias to the target, so cyclic schemas
// need no cyclic ownership.
//
// Decode parses JSON text; Lookup evaluates JSON Pointers:
//
//	doc, err := jsonvalue.Decode([]byte(`{"defs":{"x":{"type":"string"}}}`))
//	x, err := jsonvalue.Lookup(doc, "/defs/x")
package jsonvalue
