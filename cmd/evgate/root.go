package evgate

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/redactyl/evgate/internal/config"
	"github.com/redactyl/evgate/internal/log"
)

var (
	flagNoColor   bool
	flagVerbose   bool
	flagLogFormat string

	// populated before any subcommand runs; zero values when absent
	localCfg  config.FileConfig
	globalCfg config.FileConfig

	version = "0.1.0"
)

// errPolicyFailed signals a FAIL verdict. It is not an operational error:
// Execute maps it to exit status 1 without printing anything.
var errPolicyFailed = errors.New("policy evaluation failed")

// rootCmd is the base Cobra command for the evgate CLI.
var rootCmd = &cobra.Command{
	Use:   "evgate",
	Short: "Gate builds on normalized security-scan evidence",
	Long: "evgate normalizes semgrep, gitleaks and gosec reports into one finding schema " +
		"and evaluates them against a severity policy. Exit status: 0 pass, 1 fail, 2 error.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the evgate CLI. It should be called by the main package.
func Execute() {
	os.Exit(exitCode(rootCmd.Execute(), os.Stderr))
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errPolicyFailed):
		return 1
	default:
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format on stderr: text | json")
}

// setup loads configuration (CLI > local > global) and configures logging.
func setup(cmd *cobra.Command, _ []string) error {
	localCfg, globalCfg = config.FileConfig{}, config.FileConfig{}
	if c, err := config.LoadGlobal(); err == nil {
		globalCfg = c
	}
	if c, err := config.LoadLocal("."); err == nil {
		localCfg = c
	}

	format := pickString(flagLogFormat, localCfg.LogFormat, globalCfg.LogFormat)
	switch format {
	case "":
		format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("unknown --log-format %q (want text or json)", format)
	}
	log.Setup(cmd.ErrOrStderr(), format, flagVerbose)
	return nil
}

func noColor() bool {
	return pickBool(flagNoColor, localCfg.NoColor, globalCfg.NoColor)
}
