package policy

import (
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// decodeJSON rejects duplicate member names, which encoding/json would
// silently resolve to the last one.
func decodeJSON(data []byte) (*document, error) {
	var root jsontext.Value
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind() != '{' {
		return nil, fmt.Errorf("top-level value must be an object, got %s", kindName(root))
	}
	var top map[string]jsontext.Value
	if err := json.Unmarshal(root, &top); err != nil {
		return nil, err
	}

	doc := &document{}
	for k := range top {
		if !topLevelKeys[k] {
			doc.unknownKeys = append(doc.unknownKeys, k)
		}
	}

	if v, ok := top["max_findings"]; ok && v.Kind() != 'n' {
		if v.Kind() != '{' {
			return nil, fmt.Errorf("max_findings must be an object, got %s", kindName(v))
		}
		var m map[string]jsontext.Value
		if err := json.Unmarshal(v, &m); err != nil {
			return nil, err
		}
		for sev, lv := range m {
			switch lv.Kind() {
			case 'n':
				doc.limits = append(doc.limits, limit{severity: sev, kind: limitNull})
			case '0':
				doc.limits = append(doc.limits, intLimit(sev, string(lv)))
			default:
				doc.limits = append(doc.limits, limit{severity: sev, kind: limitOther, text: string(lv)})
			}
		}
	}

	if v, ok := top["allowlist"]; ok && v.Kind() != 'n' {
		if v.Kind() != '{' {
			return nil, fmt.Errorf("allowlist must be an object, got %s", kindName(v))
		}
		var al map[string]jsontext.Value
		if err := json.Unmarshal(v, &al); err != nil {
			return nil, err
		}
		if ids, ok := al["rule_ids"]; ok && ids.Kind() != 'n' {
			var list []jsontext.Value
			if ids.Kind() != '[' {
				return nil, errors.New("allowlist.rule_ids must be a list of strings")
			}
			if err := json.Unmarshal(ids, &list); err != nil {
				return nil, err
			}
			for i, item := range list {
				var s string
				if item.Kind() != '"' {
					return nil, fmt.Errorf("allowlist.rule_ids[%d] must be a string, got %s", i, kindName(item))
				}
				if err := json.Unmarshal(item, &s); err != nil {
					return nil, err
				}
				doc.ruleIDs = append(doc.ruleIDs, s)
			}
		}
	}

	if v, ok := top["fail_on_unknown_severity"]; ok && v.Kind() != 'n' {
		if v.Kind() != 't' && v.Kind() != 'f' {
			return nil, fmt.Errorf("fail_on_unknown_severity must be a boolean, got %s", kindName(v))
		}
		b := v.Kind() == 't'
		doc.failOnUnknown = &b
	}
	return doc, nil
}

func kindName(v jsontext.Value) string {
	switch v.Kind() {
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	case '"':
		return "string"
	case '0':
		return "number"
	case '[':
		return "list"
	case '{':
		return "object"
	default:
		return "invalid value"
	}
}
