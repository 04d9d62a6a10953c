// Package types defines the canonical finding schema every tool output is
// normalized into.
package types

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Severity is an uppercase, open-ended risk level. Tools may introduce levels
// beyond the constants below; nothing in evgate rejects them.
type Severity string

const (
	SevCritical Severity = "CRITICAL"
	SevHigh     Severity = "HIGH"
	SevMedium   Severity = "MEDIUM"
	SevLow      Severity = "LOW"
	SevInfo     Severity = "INFO"
	SevUnknown  Severity = "UNKNOWN"
)

// Rank orders the well-known levels for display and SARIF level mapping.
// Critical=5 down to Info=1; anything else is 0.
func (s Severity) Rank() int {
	switch s {
	case SevCritical:
		return 5
	case SevHigh:
		return 4
	case SevMedium:
		return 3
	case SevLow:
		return 2
	case SevInfo:
		return 1
	default:
		return 0
	}
}

// Gate tags which kind of scan produced a finding.
const (
	GateSAST    = "sast"
	GateSecrets = "secrets"
)

// Sentinels used when the source record lacks a value.
const (
	UnknownRuleID = "unknown"
	UnknownPath   = "unknown"
)

// Finding is the canonical, tool-agnostic finding. Field order is the JSON
// key order of persisted evidence.
type Finding struct {
	Gate     string   `json:"gate"`
	Tool     string   `json:"tool"`
	Severity Severity `json:"severity"`
	RuleID   string   `json:"rule_id"`
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Message  string   `json:"message"`
}

// Canonical returns f with sentinels filled in and the severity uppercased.
func Canonical(f Finding) Finding {
	f.Severity = NormalizeSeverity(string(f.Severity))
	if f.RuleID == "" {
		f.RuleID = UnknownRuleID
	}
	if f.Path == "" {
		f.Path = UnknownPath
	}
	if f.Line < 0 {
		f.Line = 0
	}
	return f
}

// NormalizeSeverity uppercases s, mapping an empty value to UNKNOWN.
func NormalizeSeverity(s string) Severity {
	if s == "" {
		return SevUnknown
	}
	return Severity(strings.ToUpper(s))
}

// Fingerprint identifies a finding independently of its line number so it
// survives unrelated edits above it.
func (f Finding) Fingerprint() string {
	key := strings.Join([]string{f.Tool, f.RuleID, f.Path, f.Message}, "\x00")
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}

// Location renders path:line, omitting a zero line.
func (f Finding) Location() string {
	if f.Line <= 0 {
		return f.Path
	}
	return fmt.Sprintf("%s:%d", f.Path, f.Line)
}
