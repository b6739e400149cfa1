package docparse

import (
	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
	"sigs.k8s.io/yaml"
)

// YAML parses YAML 1.2 documents by converting them to JSON first. The
// conversion goes through Go maps, so object members come out sorted by key
// rather than in source order.
type YAML struct{}

func (YAML) Format() string { return "yaml" }

func (YAML) Parse(data []byte) (jsonvalue.Value, error) {
	j, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, err
	}
	return jsonvalue.Decode(j)
}
