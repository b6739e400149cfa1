// Package refcache loads schema documents and resolves the JSON References
// between them.
//
// A Cache maps key URIs (URIs without query or fragment) to documents whose
// $ref objects have been replaced by *jsonvalue.Ref handles:
//
//	c, _ := refcache.New(refcache.WithFetcher(fetcher))
//	doc, err := c.Get(ctx, "https://example.com/schemas/person.json")
//	if errors.Is(err, refcache.ErrPointerNotFound) {
//	    // a $ref fragment does not exist in its target
//	}
//
// Loading a resource runs a resolution pass:
//
//  1. fetch and parse the resource
//  2. optionally replace its top-level id with the key URI
//  3. walk it, resolving each $ref against the current base URI, which
//     nested id members rebase, and queue the reference by target
//  4. make the document visible to the pass, then load every resource the
//     queued references name
//  5. drain the queue, rewriting each $ref slot to a handle, and check that
//     every handle reaches a value
//
// Handles are followed on access, so recursive schemas and resources that
// refer to each other load fine. A chain of references that only leads to
// other references, such as {"$ref": "#"}, fails with ErrCyclicReference.
package refcache
