//go:build tools

// Package lint pins the linters used on go-jsonschema. It is its own module
// so the library's go.mod only lists what the validator imports.
//
// From the repository root:
//
//	go run -modfile=tools/lint/go.mod github.com/golangci/golangci-lint/v2/cmd/golangci-lint run ./...
//	go run -modfile=tools/lint/go.mod honnef.co/go/tools/cmd/staticcheck ./...
package lint
