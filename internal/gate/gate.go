// Package gate aggregates canonical evidence and evaluates it against a
// policy.
package gate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/redactyl/evgate/internal/evidence"
	"github.com/redactyl/evgate/internal/normalize"
	"github.com/redactyl/evgate/internal/policy"
	"github.com/redactyl/evgate/internal/types"
)

// ErrNoEvidence is returned when discovery finds nothing to evaluate. An
// empty evidence set never passes.
var ErrNoEvidence = errors.New("no normalized evidence found")

// DefaultPattern is the discovery glob used when none is configured.
const DefaultPattern = "evidence/**/normalized/*.json"

type Verdict string

const (
	Pass Verdict = "PASS"
	Fail Verdict = "FAIL"
)

// Result is the outcome of one evaluation.
type Result struct {
	EvidenceFiles []string       `json:"evidence_files"`
	Total         int            `json:"total"`
	Filtered      int            `json:"filtered"`
	Counts        map[string]int `json:"counts"`
	Unknown       int            `json:"unknown"`
	FailOnUnknown bool           `json:"fail_on_unknown_severity"`
	Verdict       Verdict        `json:"verdict"`
	Violations    []string       `json:"violations"`

	// Findings are the evaluated findings in discovery order, allowlisted
	// ones included.
	Findings []types.Finding `json:"-"`
	// Allowlisted marks Findings[i] as exempt.
	Allowlisted []bool `json:"-"`
}

// Passed reports whether the verdict is PASS.
func (r *Result) Passed() bool { return r.Verdict == Pass }

// Severities returns the counted severities sorted by name.
func (r *Result) Severities() []string {
	out := make([]string, 0, len(r.Counts))
	for s := range r.Counts {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Evaluate applies p to findings. It has no side effects.
func Evaluate(findings []types.Finding, p *policy.Policy) *Result {
	allow := make(map[string]bool, len(p.Allowlist.RuleIDs))
	for _, id := range p.Allowlist.RuleIDs {
		allow[id] = true
	}

	r := &Result{
		Total:         len(findings),
		Counts:        make(map[string]int),
		FailOnUnknown: p.FailOnUnknownSeverity,
		Findings:      findings,
		Allowlisted:   make([]bool, len(findings)),
		Violations:    []string{},
	}
	for i, f := range findings {
		if allow[f.RuleID] {
			r.Filtered++
			r.Allowlisted[i] = true
			continue
		}
		sev := string(f.Severity)
		r.Counts[sev]++
		if !p.Known(sev) {
			r.Unknown++
		}
	}

	for _, sev := range p.Severities() {
		limit, capped := p.Limit(sev)
		if capped && r.Counts[sev] > limit {
			r.Violations = append(r.Violations,
				fmt.Sprintf("%s: %d findings exceed the limit of %d", sev, r.Counts[sev], limit))
		}
	}
	if p.FailOnUnknownSeverity && r.Unknown > 0 {
		r.Violations = append(r.Violations,
			fmt.Sprintf("%d findings have a severity not listed in max_findings", r.Unknown))
	}

	r.Verdict = Pass
	if len(r.Violations) > 0 {
		r.Verdict = Fail
	}
	return r
}

// Config describes one evaluation run. Paths are resolved by the caller.
type Config struct {
	Root    string
	Pattern string
	Policy  *policy.Policy
}

// Run discovers evidence under cfg.Root, reads it and evaluates it.
func Run(cfg Config) (*Result, error) {
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	files, err := evidence.Discover(cfg.Root, pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoEvidence, pattern)
	}
	findings, err := Collect(files)
	if err != nil {
		return nil, err
	}
	r := Evaluate(findings, cfg.Policy)
	r.EvidenceFiles = files
	return r, nil
}

// Collect reads evidence files in order and concatenates their findings.
func Collect(files []string) ([]types.Finding, error) {
	var out []types.Finding
	for _, path := range files {
		recs, err := evidence.ReadRecords(path)
		if err != nil {
			return nil, err
		}
		out = append(out, normalize.FromRecords(recs)...)
	}
	return out, nil
}
