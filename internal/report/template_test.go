package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/evgate/internal/gate"
	"github.com/redactyl/evgate/internal/policy"
	"github.com/redactyl/evgate/internal/types"
)

func TestRenderTemplate_Markdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTemplate(&buf, "markdown", sampleResult(t)))
	out := buf.String()
	assert.Contains(t, out, "### Security gate: FAIL")
	assert.Contains(t, out, "| MEDIUM | 1 |")
	assert.Contains(t, out, "| Unknown severity | 1 |")
	assert.Contains(t, out, "- 1 findings have a severity not listed in max_findings")
	assert.Contains(t, out, `SQL \| injection`)
	assert.Contains(t, out, "2 counted findings")
	assert.NotContains(t, out, "test-rule", "allowlisted findings are not listed")
}

func TestRenderTemplate_MarkdownEscapesEveryCell(t *testing.T) {
	r := gate.Evaluate([]types.Finding{{
		Gate: "sast", Tool: "semgrep", Severity: "HIGH", RuleID: "a|b",
		Path: "dir|x/f.go", Line: 3, Message: "m",
	}}, policy.Default())
	var buf bytes.Buffer
	require.NoError(t, RenderTemplate(&buf, "markdown", r))
	out := buf.String()
	assert.Contains(t, out, "| HIGH | semgrep | `a\\|b` | `dir\\|x/f.go:3` | m |")
}

func TestRenderTemplate_GitHub(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTemplate(&buf, "github", sampleResult(t)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "::warning file=db.go,line=12,title=semgrep go.sqli::SQL | injection", lines[0])
	assert.Equal(t, "::error file=run.go,title=semgrep go.exec::exec", lines[1])
	assert.Equal(t, "::error::Security gate FAIL (3 findings, 1 allowlisted)", lines[2])
}

func TestRenderTemplate_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "custom.tmpl")
	require.NoError(t, os.WriteFile(p, []byte(`{{ .Verdict | lower }} {{ len .Findings }}`), 0o644))
	var buf bytes.Buffer
	require.NoError(t, RenderTemplate(&buf, p, sampleResult(t)))
	assert.Equal(t, "fail 2", buf.String())
}

func TestRenderTemplate_Unknown(t *testing.T) {
	err := RenderTemplate(&bytes.Buffer{}, "nope", sampleResult(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markdown")
}

func TestGitHubEscaping(t *testing.T) {
	assert.Equal(t, "a%0Ab%25", ghData("a\nb%"))
	assert.Equal(t, "x%3Ay%2Cz", ghProperty("x:y,z"))
}
