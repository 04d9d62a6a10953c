// Package policy loads the gate policy: per-severity finding limits, an
// allowlist of exempt rule ids and the unknown-severity switch.
package policy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ErrPolicyNotFound is returned when a policy file does not exist.
var ErrPolicyNotFound = errors.New("policy file not found")

// ErrInvalidPolicy is returned when a policy file is malformed.
var ErrInvalidPolicy = errors.New("invalid policy file")

// DefaultPath is where evgate looks for a policy when none is given.
const DefaultPath = ".security/policy.json"

// Policy is immutable once loaded.
type Policy struct {
	// MaxFindings maps severity to the highest tolerated count. A key that
	// is present is a known severity; a nil limit means it is not capped.
	MaxFindings map[string]*int `json:"max_findings" yaml:"max_findings"`
	Allowlist   Allowlist       `json:"allowlist" yaml:"allowlist"`
	// FailOnUnknownSeverity fails the gate when a counted finding has a
	// severity that is not a key of MaxFindings.
	FailOnUnknownSeverity bool `json:"fail_on_unknown_severity" yaml:"fail_on_unknown_severity"`

	// Warnings lists settings that were accepted but have no effect.
	Warnings []string `json:"-" yaml:"-"`
}

// Allowlist holds rule ids exempt from counting.
type Allowlist struct {
	RuleIDs []string `json:"rule_ids" yaml:"rule_ids"`
}

// Known reports whether sev is a key of MaxFindings.
func (p *Policy) Known(sev string) bool {
	_, ok := p.MaxFindings[sev]
	return ok
}

// Limit returns the cap for sev, if one applies.
func (p *Policy) Limit(sev string) (int, bool) {
	l := p.MaxFindings[sev]
	if l == nil {
		return 0, false
	}
	return *l, true
}

// Severities returns the configured severity keys, sorted.
func (p *Policy) Severities() []string {
	out := make([]string, 0, len(p.MaxFindings))
	for k := range p.MaxFindings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Strict turns warnings into an error.
func (p *Policy) Strict() error {
	if len(p.Warnings) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidPolicy, strings.Join(p.Warnings, "; "))
}

// Format selects the policy decoder.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks YAML for .yaml/.yml files and JSON for everything else.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and parses a policy file.
// Returns ErrPolicyNotFound if the file doesn't exist.
// Returns ErrInvalidPolicy if the file is malformed.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPolicyNotFound, path)
		}
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	p, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes policy data. Missing keys default to no limits, an empty
// allowlist and fail_on_unknown_severity=true.
func Parse(data []byte, format Format) (*Policy, error) {
	var (
		doc *document
		err error
	)
	if format == FormatYAML {
		doc, err = decodeYAML(data)
	} else {
		doc, err = decodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	return doc.build()
}

// document is the format-independent shape both decoders produce.
type document struct {
	limits        []limit
	ruleIDs       []string
	failOnUnknown *bool
	unknownKeys   []string
}

type limitKind int

const (
	limitNull limitKind = iota
	limitInt
	limitOther
)

type limit struct {
	severity string
	kind     limitKind
	n        int
	// literal source text, for warnings
	text string
}

var topLevelKeys = map[string]bool{
	"max_findings":             true,
	"allowlist":                true,
	"fail_on_unknown_severity": true,
}

// intLimit classifies a number literal: only plain integers are limits.
func intLimit(severity, text string) limit {
	l := limit{severity: severity, kind: limitOther, text: text}
	if strings.ContainsAny(text, ".eE") {
		return l
	}
	n, err := strconv.ParseInt(text, 10, 0)
	switch {
	case err == nil:
		l.kind, l.n = limitInt, int(n)
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(text, "-"):
		l.kind, l.n = limitInt, int(^uint(0)>>1)
	case errors.Is(err, strconv.ErrRange):
		l.kind, l.n = limitInt, -1
	}
	return l
}

func (d *document) build() (*Policy, error) {
	p := &Policy{
		MaxFindings:           make(map[string]*int, len(d.limits)),
		Allowlist:             Allowlist{RuleIDs: append([]string{}, d.ruleIDs...)},
		FailOnUnknownSeverity: true,
	}
	if d.failOnUnknown != nil {
		p.FailOnUnknownSeverity = *d.failOnUnknown
	}
	sort.Strings(d.unknownKeys)
	for _, k := range d.unknownKeys {
		p.Warnings = append(p.Warnings, fmt.Sprintf("unknown key %q is ignored", k))
	}

	sort.Slice(d.limits, func(i, j int) bool { return d.limits[i].severity < d.limits[j].severity })
	for _, l := range d.limits {
		if err := checkSeverity(l.severity); err != nil {
			return nil, fmt.Errorf("%w: max_findings: %v", ErrInvalidPolicy, err)
		}
		if strings.ToUpper(l.severity) != l.severity {
			p.Warnings = append(p.Warnings,
				fmt.Sprintf("severity %q is not uppercase and never matches a finding", l.severity))
		}
		switch {
		case l.kind == limitNull:
			p.MaxFindings[l.severity] = nil
		case l.kind == limitInt && l.n >= 0:
			n := l.n
			p.MaxFindings[l.severity] = &n
		case l.kind == limitInt:
			p.MaxFindings[l.severity] = nil
			p.Warnings = append(p.Warnings,
				fmt.Sprintf("limit for %s is negative (%s); treated as no limit", l.severity, l.text))
		default:
			p.MaxFindings[l.severity] = nil
			p.Warnings = append(p.Warnings,
				fmt.Sprintf("limit for %s is not an integer (%s); treated as no limit", l.severity, l.text))
		}
	}
	return p, nil
}

func checkSeverity(s string) error {
	if s == "" {
		return errors.New("empty severity key")
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("severity key %q contains whitespace or control characters", s)
		}
	}
	return nil
}

// Default is the policy written by `evgate policy init`.
func Default() *Policy {
	zero, ten := 0, 10
	return &Policy{
		MaxFindings: map[string]*int{
			"CRITICAL": &zero,
			"HIGH":     &zero,
			"ERROR":    &zero,
			"MEDIUM":   &ten,
			"WARNING":  &ten,
			"LOW":      nil,
			"INFO":     nil,
		},
		Allowlist:             Allowlist{RuleIDs: []string{}},
		FailOnUnknownSeverity: true,
	}
}
