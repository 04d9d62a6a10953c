package evgate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redactyl/evgate/internal/config"
)

var (
	cfgOutput string
	cfgForce  bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a commented .evgate.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := writeNew(cfgOutput, []byte(config.Sample), cfgForce); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
			return nil
		},
	}
	initCmd.Flags().StringVar(&cfgOutput, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)
}
