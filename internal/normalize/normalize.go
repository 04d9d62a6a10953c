// Package normalize translates raw scanner output into canonical findings.
//
// Each supported tool is described by how to locate its list of records and
// by a field table: for every canonical field, an ordered list of candidate
// key paths tried in priority order. The first candidate holding a truthy
// value wins, so schema drift between tool versions (RuleID vs Rule, File vs
// file) is handled in one visible place instead of in conditionals.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/redactyl/evgate/internal/types"
)

var (
	// ErrUnsupportedTool is returned for a tool identifier with no normalizer.
	ErrUnsupportedTool = errors.New("unsupported tool")

	// ErrMalformedInput is returned when a raw document does not have the
	// shape the tool's normalizer expects.
	ErrMalformedInput = errors.New("malformed input")
)

// Tool describes one supported scanner.
type Tool struct {
	Name string
	Gate string
	// Severity, when set, overrides whatever the record says. Used for tools
	// that do not grade their findings.
	Severity types.Severity

	records func(doc any) ([]any, error)
	// review, when set, replaces records for raw reports read by Review.
	review  func(doc any) ([]any, error)
	fields  fieldTable
}

var registry = map[string]Tool{}

func register(t Tool) { registry[t.Name] = t }

// Lookup returns the normalizer registered for name. Matching ignores case
// and surrounding whitespace.
func Lookup(name string) (Tool, bool) {
	t, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Tools returns every registered normalizer sorted by name.
func Tools() []Tool {
	out := make([]Tool, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the registered tool identifiers, sorted.
func Names() []string {
	var names []string
	for _, t := range Tools() {
		names = append(names, t.Name)
	}
	return names
}

// Normalize converts one decoded raw document (as produced by
// encoding/json into an any) from the named tool into canonical findings,
// preserving the tool's record order.
func Normalize(tool string, doc any) ([]types.Finding, error) {
	t, ok := Lookup(tool)
	if !ok {
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedTool, tool, strings.Join(Names(), ", "))
	}
	return t.Normalize(doc)
}

// Review is Normalize as used by the manual review of raw reports. It
// differs only in which wrapper key a tool's records are read from first.
func Review(tool string, doc any) ([]types.Finding, error) {
	t, ok := Lookup(tool)
	if !ok {
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedTool, tool, strings.Join(Names(), ", "))
	}
	if t.review != nil {
		return t.normalize(doc, t.review)
	}
	return t.Normalize(doc)
}

// Normalize converts doc using this tool's record locator and field table.
func (t Tool) Normalize(doc any) ([]types.Finding, error) {
	return t.normalize(doc, t.records)
}

func (t Tool) normalize(doc any, locate func(any) ([]any, error)) ([]types.Finding, error) {
	recs, err := locate(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Name, err)
	}
	out := make([]types.Finding, 0, len(recs))
	for i, r := range recs {
		rec, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: %w: record %d is %s, want object", t.Name, ErrMalformedInput, i, kindOf(r))
		}
		f, err := t.fields.finding(rec)
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", t.Name, i, err)
		}
		f.Gate = t.Gate
		f.Tool = t.Name
		if t.Severity != "" {
			f.Severity = t.Severity
		}
		out = append(out, types.Canonical(f))
	}
	return out, nil
}

// keyPath addresses a value through nested objects, e.g. {"extra","severity"}.
type keyPath []string

// candidates are tried in order; the first truthy value wins.
type candidates []keyPath

func paths(ps ...string) candidates {
	out := make(candidates, 0, len(ps))
	for _, p := range ps {
		out = append(out, keyPath(strings.Split(p, ".")))
	}
	return out
}

// fieldTable maps each canonical field to its source candidates. A nil entry
// leaves the field to its sentinel (or to the Tool's fixed values).
type fieldTable struct {
	gate     candidates
	tool     candidates
	severity candidates
	ruleID   candidates
	path     candidates
	line     candidates
	message  candidates
}

func (t fieldTable) finding(rec map[string]any) (types.Finding, error) {
	var f types.Finding
	strs := []struct {
		dst  *string
		from candidates
	}{
		{&f.Gate, t.gate},
		{&f.Tool, t.tool},
		{(*string)(&f.Severity), t.severity},
		{&f.RuleID, t.ruleID},
		{&f.Path, t.path},
		{&f.Message, t.message},
	}
	for _, s := range strs {
		v, err := s.from.lookup(rec)
		if err != nil {
			return f, err
		}
		*s.dst = stringOf(v)
	}
	v, err := t.line.lookup(rec)
	if err != nil {
		return f, err
	}
	f.Line = lineOf(v)
	return f, nil
}

// lookup returns the first truthy scalar among the candidates, or nil.
func (c candidates) lookup(rec map[string]any) (any, error) {
	for _, p := range c {
		v, err := p.resolve(rec)
		if err != nil {
			return nil, err
		}
		if truthy(v) && isScalar(v) {
			return v, nil
		}
	}
	return nil, nil
}

func (p keyPath) resolve(rec map[string]any) (any, error) {
	cur := rec
	for i, key := range p {
		v := cur[key]
		if i == len(p)-1 {
			return v, nil
		}
		if !truthy(v) {
			return nil, nil
		}
		next, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q is %s, want object", ErrMalformedInput, strings.Join(p[:i+1], "."), kindOf(v))
		}
		cur = next
	}
	return nil, nil
}

// truthy follows the usual JSON-ish notion of emptiness: null, "", 0, false
// and empty containers are all "absent".
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return false
	}
	return true
}

func stringOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// lineOf coerces a line value to a non-negative int. Integral values are
// used directly, floats are truncated and strings contribute their leading
// digits ("12-14" is 12). Anything else is 0.
func lineOf(v any) int {
	var n float64
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			n = float64(i)
		} else if f, err := x.Float64(); err == nil {
			n = f
		}
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case string:
		s := strings.TrimSpace(x)
		end := 0
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		if i, err := strconv.Atoi(s[:end]); err == nil {
			n = float64(i)
		}
	}
	if n <= 0 || math.IsNaN(n) || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// listAt returns the first truthy value among keys of obj as a list. A
// truthy non-list value is malformed; no truthy value yields an empty list.
func listAt(obj map[string]any, keys ...string) ([]any, error) {
	for _, k := range keys {
		v := obj[k]
		if !truthy(v) {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q is %s, want list", ErrMalformedInput, k, kindOf(v))
		}
		return list, nil
	}
	return nil, nil
}

func wantObject(doc any) (map[string]any, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is %s, want object", ErrMalformedInput, kindOf(doc))
	}
	return obj, nil
}
