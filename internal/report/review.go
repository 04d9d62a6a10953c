package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/redactyl/evgate/internal/evidence"
	"github.com/redactyl/evgate/internal/log"
	"github.com/redactyl/evgate/internal/normalize"
	"github.com/redactyl/evgate/internal/types"
)

// ReviewSource is one raw tool report shown in a manual review.
type ReviewSource struct {
	Tool string
	Path string
}

// Review prints raw scanner reports for a human to triage without applying
// a policy. Missing or unreadable reports are noted and skipped; at most
// limit findings are listed per tool (negative means all).
func Review(w io.Writer, sources []ReviewSource, limit int, opts Options) error {
	fmt.Fprintln(w, "Quality gate (manual review)")
	for _, src := range sources {
		title := displayName(src.Tool)
		findings, err := reviewFindings(src)
		if err != nil {
			if !errors.Is(err, evidence.ErrInputNotFound) {
				log.Warn("skipping report", "tool", src.Tool, "error", err)
			}
			fmt.Fprintf(w, "- %s: no report found\n", title)
			continue
		}

		fmt.Fprintf(w, "- %s findings: %d\n", title, len(findings))
		shown := findings
		if limit >= 0 && len(shown) > limit {
			shown = shown[:limit]
		}
		if len(shown) > 0 {
			if err := PrintTable(w, shown, opts); err != nil {
				return err
			}
		}
		if more := len(findings) - len(shown); more > 0 {
			fmt.Fprintf(w, "  - ... %d more\n", more)
		}
	}
	_, err := fmt.Fprintln(w, "Result: MANUAL REVIEW REQUIRED")
	return err
}

func reviewFindings(src ReviewSource) ([]types.Finding, error) {
	doc, err := evidence.ReadDocument(src.Path)
	if err != nil {
		return nil, err
	}
	return normalize.Review(src.Tool, doc)
}

func displayName(tool string) string {
	if tool == "" {
		return tool
	}
	return strings.ToUpper(tool[:1]) + tool[1:]
}
