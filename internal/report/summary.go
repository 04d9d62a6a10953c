package report

import (
	"fmt"
	"io"

	"github.com/redactyl/evgate/internal/gate"
)

// PrintSummary writes the evaluation summary. The layout is stable; CI
// logs and scripts grep for the final "Result:" line.
func PrintSummary(w io.Writer, r *gate.Result, opts Options) {
	fmt.Fprintln(w, "Policy evaluation")
	fmt.Fprintf(w, "  Evidence files: %d\n", len(r.EvidenceFiles))
	fmt.Fprintf(w, "  Findings total: %d\n", r.Total)
	fmt.Fprintf(w, "  Findings filtered (allowlist): %d\n", r.Filtered)
	for _, sev := range r.Severities() {
		fmt.Fprintf(w, "  %s: %d\n", sev, r.Counts[sev])
	}
	if r.FailOnUnknown {
		fmt.Fprintf(w, "  Unknown severity count: %d\n", r.Unknown)
	}
	fmt.Fprintf(w, "Result: %s\n", opts.verdict(r.Verdict))
}
