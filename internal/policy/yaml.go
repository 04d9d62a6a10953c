package policy

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

func decodeYAML(data []byte) (*document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("empty policy document")
	}
	top := deref(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top-level value must be a mapping, got %s", nodeName(top))
	}
	fields, err := pairs(top)
	if err != nil {
		return nil, err
	}

	doc := &document{}
	for _, f := range fields {
		switch f.key {
		case "max_findings":
			if isNull(f.val) {
				continue
			}
			if f.val.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("max_findings must be a mapping, got %s", nodeName(f.val))
			}
			limits, err := pairs(f.val)
			if err != nil {
				return nil, fmt.Errorf("max_findings: %w", err)
			}
			for _, l := range limits {
				doc.limits = append(doc.limits, yamlLimit(l.key, l.val))
			}
		case "allowlist":
			if isNull(f.val) {
				continue
			}
			if f.val.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("allowlist must be a mapping, got %s", nodeName(f.val))
			}
			al, err := pairs(f.val)
			if err != nil {
				return nil, fmt.Errorf("allowlist: %w", err)
			}
			for _, a := range al {
				if a.key != "rule_ids" || isNull(a.val) {
					continue
				}
				if a.val.Kind != yaml.SequenceNode {
					return nil, errors.New("allowlist.rule_ids must be a list of strings")
				}
				for i, item := range a.val.Content {
					item = deref(item)
					if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
						return nil, fmt.Errorf("allowlist.rule_ids[%d] must be a string, got %s", i, nodeName(item))
					}
					doc.ruleIDs = append(doc.ruleIDs, item.Value)
				}
			}
		case "fail_on_unknown_severity":
			if isNull(f.val) {
				continue
			}
			var b bool
			if f.val.Kind != yaml.ScalarNode || f.val.Tag != "!!bool" {
				return nil, fmt.Errorf("fail_on_unknown_severity must be a boolean, got %s", nodeName(f.val))
			}
			if err := f.val.Decode(&b); err != nil {
				return nil, err
			}
			doc.failOnUnknown = &b
		default:
			doc.unknownKeys = append(doc.unknownKeys, f.key)
		}
	}
	return doc, nil
}

type pair struct {
	key string
	val *yaml.Node
}

// pairs returns the entries of a mapping, rejecting duplicate or non-string
// keys.
func pairs(m *yaml.Node) ([]pair, error) {
	seen := make(map[string]bool, len(m.Content)/2)
	out := make([]pair, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k := deref(m.Content[i])
		if k.Kind != yaml.ScalarNode || k.Tag != "!!str" {
			return nil, fmt.Errorf("line %d: keys must be strings, got %s", k.Line, nodeName(k))
		}
		if seen[k.Value] {
			return nil, fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
		}
		seen[k.Value] = true
		out = append(out, pair{key: k.Value, val: deref(m.Content[i+1])})
	}
	return out, nil
}

func yamlLimit(sev string, n *yaml.Node) limit {
	switch {
	case isNull(n):
		return limit{severity: sev, kind: limitNull}
	case n.Kind == yaml.ScalarNode && n.Tag == "!!int":
		var v int
		if err := n.Decode(&v); err != nil {
			return intLimit(sev, n.Value)
		}
		return limit{severity: sev, kind: limitInt, n: v, text: n.Value}
	case n.Kind == yaml.ScalarNode:
		return limit{severity: sev, kind: limitOther, text: n.Value}
	default:
		return limit{severity: sev, kind: limitOther, text: nodeName(n)}
	}
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func nodeName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return "null"
		case "!!bool":
			return "boolean"
		case "!!int", "!!float":
			return "number"
		case "!!str":
			return "string"
		}
		return n.Tag
	default:
		return "unsupported node"
	}
}
