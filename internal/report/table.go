package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/redactyl/evgate/internal/types"
)

const maxMessage = 80

// PrintTable renders findings as a table, most severe first. findings is
// not modified.
func PrintTable(w io.Writer, findings []types.Finding, opts Options) error {
	if len(findings) == 0 {
		_, err := fmt.Fprintln(w, "No findings")
		return err
	}
	rows := append([]types.Finding(nil), findings...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Line < b.Line
	})

	table := tablewriter.NewWriter(w)
	table.Header("Severity", "Tool", "Rule", "Location", "Message")
	for _, f := range rows {
		if err := table.Append([]string{
			opts.severity(f.Severity), f.Tool, f.RuleID, f.Location(), truncate(f.Message, maxMessage),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
