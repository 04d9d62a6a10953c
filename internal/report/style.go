package report

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/redactyl/evgate/internal/gate"
	"github.com/redactyl/evgate/internal/types"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	severityStyles = map[types.Severity]lipgloss.Style{
		types.SevCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		types.SevHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		types.SevMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		types.SevLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		types.SevInfo:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

// Options controls human-readable output.
type Options struct {
	Color bool
}

// UseColor reports whether w is a terminal and colour was not disabled with
// --no-color or NO_COLOR.
func UseColor(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (o Options) verdict(v gate.Verdict) string {
	if !o.Color {
		return string(v)
	}
	if v == gate.Pass {
		return passStyle.Render(string(v))
	}
	return failStyle.Render(string(v))
}

func (o Options) severity(s types.Severity) string {
	st, ok := severityStyles[s]
	if !o.Color || !ok {
		return string(s)
	}
	return st.Render(string(s))
}
