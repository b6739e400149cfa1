// Package fetch provides the document fetchers the reference cache loads
// schema resources through.
//
// A Fetcher maps an absolute key URI to raw bytes:
//
//   - FileFetcher reads file:// URIs
//   - HTTPFetcher performs pooled GETs for http:// and https://, with an
//     optional DocumentCache for raw bytes
//   - MemoryFetcher serves bundled documents
//   - SchemeMux routes by scheme, Chain falls back across fetchers
//
// Missing resources produce an *Error with StatusCode 404, which matches
// ErrNotFound:
//
//	f, _ := fetch.NewChain(fetch.NewMemoryFetcher(bundled), fetch.Default(nil))
//	data, err := f.Fetch(ctx, "https://example.com/schemas/person.json")
//	if fetch.IsNotFound(err) {
//	    // ...
//	}
package fetch
