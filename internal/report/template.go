package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/redactyl/evgate/internal/gate"
	"github.com/redactyl/evgate/internal/types"
)

// builtInTemplates are selected with `evgate evaluate --template NAME`.
var builtInTemplates = map[string]string{
	"markdown": `### Security gate: {{ .Verdict }}

| Metric | Value |
|---|---|
| Evidence files | {{ len .Result.EvidenceFiles }} |
| Findings total | {{ .Result.Total }} |
| Filtered (allowlist) | {{ .Result.Filtered }} |
{{- range $sev := .Result.Severities }}
| {{ $sev }} | {{ index $.Result.Counts $sev }} |
{{- end }}
{{- if .Result.FailOnUnknown }}
| Unknown severity | {{ .Result.Unknown }} |
{{- end }}
{{ with .Result.Violations }}
**Violations**
{{ range . }}
- {{ . }}
{{- end }}
{{ end }}
{{- with .Findings }}
<details><summary>{{ len . }} counted findings</summary>

| Severity | Tool | Rule | Location | Message |
|---|---|---|---|---|
{{- range . }}
| {{ .Severity }} | {{ .Tool }} | ` + "`{{ .RuleID | mdCell }}`" + ` | ` + "`{{ .Location | mdCell }}`" + ` | {{ .Message | mdCell | trunc 120 }} |
{{- end }}

</details>
{{- end }}
`,

	"github": `{{- range .Findings }}
::{{ annotationLevel .Severity }} file={{ .Path | ghProperty }}{{ if .Line }},line={{ .Line }}{{ end }},title={{ printf "%s %s" .Tool .RuleID | ghProperty }}::{{ .Message | default .RuleID | ghData }}
{{- end }}
::{{ if eq .Verdict "PASS" }}notice{{ else }}error{{ end }}::Security gate {{ .Verdict }} ({{ .Result.Total }} findings, {{ .Result.Filtered }} allowlisted)
`,
}

// TemplateNames lists the built-in templates.
func TemplateNames() []string {
	names := make([]string, 0, len(builtInTemplates))
	for n := range builtInTemplates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// templateData is what templates see: the result plus the findings that
// counted towards it.
type templateData struct {
	Result   *gate.Result
	Verdict  string
	Findings []types.Finding
}

// RenderTemplate renders r with a built-in template name or a template file
// path. Sprig functions are available.
func RenderTemplate(w io.Writer, nameOrPath string, r *gate.Result) error {
	src, ok := builtInTemplates[nameOrPath]
	if !ok {
		b, err := os.ReadFile(nameOrPath)
		if err != nil {
			return fmt.Errorf("template %q is not built in (%s) and could not be read: %w",
				nameOrPath, strings.Join(TemplateNames(), ", "), err)
		}
		src = string(b)
	}

	funcMap := sprig.TxtFuncMap()
	funcMap["ghData"] = ghData
	funcMap["ghProperty"] = ghProperty
	funcMap["mdCell"] = mdCell
	funcMap["annotationLevel"] = annotationLevel

	tmpl, err := template.New("evgate").Funcs(funcMap).Parse(src)
	if err != nil {
		return fmt.Errorf("parse output template: %w", err)
	}

	data := templateData{Result: r, Verdict: string(r.Verdict)}
	for i, f := range r.Findings {
		if i < len(r.Allowlisted) && r.Allowlisted[i] {
			continue
		}
		data.Findings = append(data.Findings, f)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// ghData and ghProperty apply the escaping GitHub workflow commands expect
// for the message and for property values respectively.
func ghData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

func ghProperty(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C").Replace(s)
}

func mdCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\r", " ", "\n", " ").Replace(s)
}

func annotationLevel(s types.Severity) string {
	switch sarifLevel(s) {
	case "error":
		return "error"
	case "warning":
		return "warning"
	default:
		return "notice"
	}
}
