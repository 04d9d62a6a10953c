package evgate

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redactyl/evgate/internal/normalize"
	"github.com/redactyl/evgate/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List supported scanners and report templates",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			for _, t := range normalize.Tools() {
				sev := "from report"
				if t.Severity != "" {
					sev = "always " + string(t.Severity)
				}
				fmt.Fprintf(out, "%-10s %-8s %s\n", t.Name, t.Gate, sev)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "templates:", strings.Join(report.TemplateNames(), ", "))
		},
	}
	rootCmd.AddCommand(cmd)
}
