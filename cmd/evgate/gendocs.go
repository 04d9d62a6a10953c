package evgate

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redactyl/evgate/internal/normalize"
	"github.com/redactyl/evgate/internal/report"
)

// gendocs regenerates the supported tools section in README.md between the
// markers <!-- BEGIN:TOOLS --> and <!-- END:TOOLS -->.
func init() {
	var path string
	cmd := &cobra.Command{
		Use:    "gendocs",
		Short:  "Regenerate the README supported tools section",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			nb, err := replaceSection(b, []byte("<!-- BEGIN:TOOLS -->"), []byte("<!-- END:TOOLS -->"), toolsMarkdown())
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return os.WriteFile(path, nb, 0644)
		},
	}
	cmd.Flags().StringVar(&path, "readme", "README.md", "file to update")
	rootCmd.AddCommand(cmd)
}

func toolsMarkdown() string {
	var out strings.Builder
	out.WriteString("\n| Tool | Gate | Severity |\n|---|---|---|\n")
	for _, t := range normalize.Tools() {
		sev := "from report, uppercased"
		if t.Severity != "" {
			sev = "always `" + string(t.Severity) + "`"
		}
		fmt.Fprintf(&out, "| `%s` | `%s` | %s |\n", t.Name, t.Gate, sev)
	}
	fmt.Fprintf(&out, "\nBuilt-in `--template` names: %s.\n", strings.Join(report.TemplateNames(), ", "))
	return out.String()
}

func replaceSection(b, start, end []byte, body string) ([]byte, error) {
	i := bytes.Index(b, start)
	j := bytes.Index(b, end)
	if i < 0 || j < 0 || j <= i {
		return nil, fmt.Errorf("markers %s and %s not found", start, end)
	}
	var nb bytes.Buffer
	nb.Write(b[:i])
	nb.Write(start)
	nb.WriteString("\n")
	nb.WriteString(body)
	nb.Write(end)
	nb.Write(b[j+len(end):])
	return nb.Bytes(), nil
}
