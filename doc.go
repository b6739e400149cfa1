// Package jsonschema validates JSON documents against JSON Schema draft-04
// schemas whose $ref graph may span many resources.
//
// A Loader fetches a schema and every resource it references into a shared
// cache, rewriting each $ref into a lazy handle, and compiles schema objects
// into constraint trees:
//
//	schema, err := jsonschema.Compile(ctx, "https://example.com/person.json")
//	if err != nil {
//	    return err
//	}
//	errs, err := schema.ValidateBytes(data)
//	if err != nil {
//	    return err // not JSON
//	}
//	for _, e := range errs {
//	    fmt.Println(e)
//	}
//
// The supported keywords are type, pattern, minLength and maxLength. Others
// are added through constraint.Registry and WithRegistry.
package jsonschema
