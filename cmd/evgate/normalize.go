package evgate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redactyl/evgate/internal/evidence"
	"github.com/redactyl/evgate/internal/log"
	"github.com/redactyl/evgate/internal/normalize"
)

var (
	flagStage       string
	flagEvidenceDir string
)

func init() {
	cmd := &cobra.Command{
		Use:   "normalize <tool> <input.json> [output.json]",
		Short: "Convert a raw scanner report into canonical evidence",
		Long: "Normalize reads a raw semgrep, gitleaks or gosec JSON report and writes the canonical " +
			"finding list. Without an output path the file goes to <evidence-dir>/<tool>/normalized/<stage>.json.",
		Args:              cobra.RangeArgs(2, 3),
		RunE:              runNormalize,
		ValidArgsFunction: completeTool,
		Example: `  evgate normalize semgrep semgrep.json
  evgate normalize gitleaks gitleaks.json out/secrets.json
  evgate normalize gosec gosec.json --stage pr`,
	}
	cmd.Flags().StringVar(&flagStage, "stage", "", "pipeline stage used in the default output name (default scan)")
	cmd.Flags().StringVar(&flagEvidenceDir, "evidence-dir", "", "evidence root used for the default output path (default evidence)")
	rootCmd.AddCommand(cmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	tool, ok := normalize.Lookup(args[0])
	if !ok {
		return fmt.Errorf("%w: %s (supported: %s)", normalize.ErrUnsupportedTool, args[0], strings.Join(normalize.Names(), ", "))
	}

	out := ""
	if len(args) == 3 {
		out = args[2]
	} else {
		stage := orDefault(pickString(flagStage, localCfg.Stage, globalCfg.Stage), "scan")
		if err := checkStage(stage); err != nil {
			return err
		}
		dir := orDefault(pickString(flagEvidenceDir, localCfg.EvidenceDir, globalCfg.EvidenceDir), "evidence")
		out = evidence.Path(dir, tool.Name, stage)
	}

	doc, err := evidence.ReadDocument(args[1])
	if err != nil {
		return err
	}
	findings, err := tool.Normalize(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", args[1], err)
	}
	if err := evidence.WriteFindings(out, findings); err != nil {
		return err
	}
	log.Info("wrote evidence", "tool", tool.Name, "findings", len(findings), "path", out)
	return nil
}

// completeTool offers tool names for the first argument and files after it.
func completeTool(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return normalize.Names(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveDefault
}

// checkStage rejects stage names that would escape the normalized directory.
func checkStage(stage string) error {
	if stage == "." || stage == ".." || filepath.Base(stage) != stage || strings.ContainsAny(stage, `/\`) {
		return fmt.Errorf("invalid --stage %q: must be a plain file name", stage)
	}
	return nil
}
