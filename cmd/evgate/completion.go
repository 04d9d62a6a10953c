package evgate

import (
	"fmt"

	"github.com/spf13/cobra"
)

const completionLong = "Completion prints a script that completes evgate subcommands, flags and the " +
	"tool names accepted by `evgate normalize`. Source it from your shell profile or install it " +
	"where your shell loads completions."

func init() {
	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Long:      completionLong,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
		Example: `
# Current bash session
source <(evgate completion bash)

# Zsh, loaded on the next shell start
evgate completion zsh > "${fpath[1]}/_evgate"

# Fish
evgate completion fish > ~/.config/fish/completions/evgate.fish

# PowerShell
evgate completion powershell | Out-String | Invoke-Expression
`,
	}
	rootCmd.AddCommand(cmd)
}
