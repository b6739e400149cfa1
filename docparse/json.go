package docparse

import "github.com/albertocavalcante/go-jsonschema/jsonvalue"

// JSON parses RFC 8259 documents, keeping object member order.
type JSON struct{}

func (JSON) Format() string { return "json" }

func (JSON) Parse(data []byte) (jsonvalue.Value, error) {
	return jsonvalue.Decode(data)
}
