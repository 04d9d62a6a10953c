package core

import (
	"github.com/redactyl/evgate/internal/gate"
	"github.com/redactyl/evgate/internal/normalize"
	"github.com/redactyl/evgate/internal/policy"
	"github.com/redactyl/evgate/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Finding = types.Finding
type Policy = policy.Policy
type Result = gate.Result
type Config = gate.Config

// Errors callers may test for with errors.Is.
var (
	ErrUnsupportedTool = normalize.ErrUnsupportedTool
	ErrMalformedInput  = normalize.ErrMalformedInput
	ErrPolicyNotFound  = policy.ErrPolicyNotFound
	ErrInvalidPolicy   = policy.ErrInvalidPolicy
	ErrNoEvidence      = gate.ErrNoEvidence
)

// Normalize converts a decoded tool report into canonical findings.
func Normalize(tool string, doc any) ([]Finding, error) {
	return normalize.Normalize(tool, doc)
}

// Tools returns the supported tool identifiers.
func Tools() []string { return normalize.Names() }

// LoadPolicy reads a JSON or YAML policy file.
func LoadPolicy(path string) (*Policy, error) { return policy.Load(path) }

// Evaluate applies a policy to findings without touching the filesystem.
func Evaluate(findings []Finding, p *Policy) *Result { return gate.Evaluate(findings, p) }

// Run discovers evidence files and evaluates them.
func Run(cfg Config) (*Result, error) { return gate.Run(cfg) }
