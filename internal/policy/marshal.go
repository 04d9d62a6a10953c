package policy

import (
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"gopkg.in/yaml.v3"
)

// Marshal encodes p in the given format with sorted keys and a trailing
// newline.
func Marshal(p *Policy, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(p)
	}
	b, err := json.Marshal(p, jsontext.WithIndent("  "), json.Deterministic(true))
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
