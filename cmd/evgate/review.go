package evgate

import (
	"github.com/spf13/cobra"

	"github.com/redactyl/evgate/internal/report"
)

var (
	flagReviewGitleaks string
	flagReviewSemgrep  string
	flagReviewGosec    string
	flagReviewLimit    int
)

func init() {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Print raw scanner reports for manual triage",
		Long: "Review lists findings straight from the raw gitleaks and semgrep reports without applying " +
			"a policy. It always exits 0; the verdict is left to a human.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sources := []report.ReviewSource{
				{Tool: "gitleaks", Path: flagReviewGitleaks},
				{Tool: "semgrep", Path: flagReviewSemgrep},
			}
			if flagReviewGosec != "" {
				sources = append(sources, report.ReviewSource{Tool: "gosec", Path: flagReviewGosec})
			}
			out := cmd.OutOrStdout()
			return report.Review(out, sources, flagReviewLimit, report.Options{Color: report.UseColor(out, noColor())})
		},
	}
	cmd.Flags().StringVar(&flagReviewGitleaks, "gitleaks", "evidence/gitleaks/gitleaks.json", "raw gitleaks report")
	cmd.Flags().StringVar(&flagReviewSemgrep, "semgrep", "evidence/semgrep/semgrep.json", "raw semgrep report")
	cmd.Flags().StringVar(&flagReviewGosec, "gosec", "", "raw gosec report (optional)")
	cmd.Flags().IntVar(&flagReviewLimit, "limit", 10, "findings listed per tool (-1 for all)")
	rootCmd.AddCommand(cmd)
}
