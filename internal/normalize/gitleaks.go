package normalize

import (
	"fmt"

	"github.com/redactyl/evgate/internal/types"
)

func init() {
	register(Tool{
		Name: "gitleaks",
		Gate: types.GateSecrets,
		// gitleaks does not grade findings; every leaked secret is HIGH.
		Severity: types.SevHigh,
		records:  gitleaksFindings,
		review:   gitleaksReviewFindings,
		fields: fieldTable{
			ruleID:  paths("RuleID", "Rule"),
			path:    paths("File", "file"),
			line:    paths("StartLine", "line"),
			message: paths("Description", "Message"),
		},
	})
}

// gitleaksFindings accepts both report layouts: the bare array written by
// `gitleaks detect --report-format json` and an object wrapping it under
// `findings` (older releases used `results`).
func gitleaksFindings(doc any) ([]any, error) {
	switch d := doc.(type) {
	case []any:
		return d, nil
	case map[string]any:
		return listAt(d, "findings", "results")
	default:
		return nil, fmt.Errorf("%w: top-level value is %s, want list or object", ErrMalformedInput, kindOf(doc))
	}
}

// gitleaksReviewFindings is the manual review's reading of a report, which
// prefers `results` when both wrapper keys are set.
func gitleaksReviewFindings(doc any) ([]any, error) {
	if d, ok := doc.(map[string]any); ok {
		return listAt(d, "results", "findings")
	}
	return gitleaksFindings(doc)
}
