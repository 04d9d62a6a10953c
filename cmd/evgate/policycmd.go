package evgate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redactyl/evgate/internal/policy"
)

var (
	flagPolicyOutput string
	flagPolicyForce  bool
	flagPolicyStrict bool
)

func init() {
	pc := &cobra.Command{Use: "policy", Short: "Policy file helpers"}
	rootCmd.AddCommand(pc)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default policy (JSON, or YAML for .yaml/.yml paths)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := policy.Marshal(policy.Default(), policy.FormatFor(flagPolicyOutput))
			if err != nil {
				return err
			}
			if err := writeNew(flagPolicyOutput, b, flagPolicyForce); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", flagPolicyOutput)
			return nil
		},
	}
	initCmd.Flags().StringVar(&flagPolicyOutput, "output", policy.DefaultPath, "policy file to write")
	initCmd.Flags().BoolVar(&flagPolicyForce, "force", false, "overwrite an existing file")
	pc.AddCommand(initCmd)

	validateCmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Check a policy file and report settings that have no effect",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := orDefault(pickString("", localCfg.Policy, globalCfg.Policy), policy.DefaultPath)
			if len(args) == 1 {
				path = args[0]
			}
			p, err := policy.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range p.Warnings {
				fmt.Fprintln(out, "warning:", w)
			}
			if flagPolicyStrict || pickBool(false, localCfg.StrictPolicy, globalCfg.StrictPolicy) {
				if err := p.Strict(); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			fmt.Fprintf(out, "%s: ok (%d severities, %d allowlisted rule ids, fail_on_unknown_severity=%t)\n",
				path, len(p.MaxFindings), len(p.Allowlist.RuleIDs), p.FailOnUnknownSeverity)
			return nil
		},
	}
	validateCmd.Flags().BoolVar(&flagPolicyStrict, "strict", false, "treat warnings as errors")
	pc.AddCommand(validateCmd)
}
