package normalize

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/evgate/internal/types"
)

// decode mirrors how evidence.ReadDocument decodes raw reports.
func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestSemgrep_Basic(t *testing.T) {
	doc := decode(t, `{"results":[{"check_id":"go.sqli","path":"db.go","start":{"line":12},
		"extra":{"severity":"error","message":"SQL injection"}}]}`)
	got, err := Normalize("semgrep", doc)
	require.NoError(t, err)
	assert.Equal(t, []types.Finding{{
		Gate: "sast", Tool: "semgrep", Severity: "ERROR", RuleID: "go.sqli",
		Path: "db.go", Line: 12, Message: "SQL injection",
	}}, got)
}

func TestSemgrep_MissingFieldsUseSentinels(t *testing.T) {
	doc := decode(t, `{"results":[{"extra":null,"start":{}}]}`)
	got, err := Normalize("semgrep", doc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.Finding{
		Gate: "sast", Tool: "semgrep", Severity: "UNKNOWN", RuleID: "unknown", Path: "unknown",
	}, got[0])
}

func TestSemgrep_NoResults(t *testing.T) {
	for _, in := range []string{`{}`, `{"results":null}`, `{"results":[]}`} {
		got, err := Normalize("semgrep", decode(t, in))
		require.NoError(t, err, in)
		assert.Empty(t, got, in)
	}
}

func TestSemgrep_Malformed(t *testing.T) {
	cases := map[string]string{
		"top-level list":   `[]`,
		"results string":   `{"results":"nope"}`,
		"record not obj":   `{"results":[1]}`,
		"extra not object": `{"results":[{"extra":"high"}]}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize("semgrep", decode(t, in))
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestGitleaks_LayoutsAreEquivalent(t *testing.T) {
	rec := `{"RuleID":"aws-access-key","File":"config.env","StartLine":3,"Description":"AWS key"}`
	want := []types.Finding{{
		Gate: "secrets", Tool: "gitleaks", Severity: "HIGH", RuleID: "aws-access-key",
		Path: "config.env", Line: 3, Message: "AWS key",
	}}
	for _, in := range []string{
		`[` + rec + `]`,
		`{"findings":[` + rec + `]}`,
		`{"results":[` + rec + `]}`,
		`{"findings":[],"results":[` + rec + `]}`,
	} {
		got, err := Normalize("gitleaks", decode(t, in))
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestGitleaks_ReviewPrefersResults(t *testing.T) {
	doc := decode(t, `{"findings":[{"RuleID":"from-findings"}],"results":[{"RuleID":"from-results"}]}`)

	got, err := Normalize("gitleaks", doc)
	require.NoError(t, err)
	assert.Equal(t, "from-findings", got[0].RuleID)

	got, err = Review("gitleaks", doc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "from-results", got[0].RuleID)

	got, err = Review("gitleaks", decode(t, `{"findings":[{"RuleID":"only"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "only", got[0].RuleID)

	got, err = Review("semgrep", decode(t, `{"results":[{"check_id":"r"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "r", got[0].RuleID)

	_, err = Review("trivy", doc)
	assert.ErrorIs(t, err, ErrUnsupportedTool)
}

func TestGitleaks_FallbackKeys(t *testing.T) {
	doc := decode(t, `[{"RuleID":"","Rule":"generic","file":"a.txt","line":7,"Message":"token"}]`)
	got, err := Normalize("gitleaks", doc)
	require.NoError(t, err)
	assert.Equal(t, "generic", got[0].RuleID)
	assert.Equal(t, "a.txt", got[0].Path)
	assert.Equal(t, 7, got[0].Line)
	assert.Equal(t, "token", got[0].Message)
	assert.Equal(t, types.SevHigh, got[0].Severity)
}

func TestGitleaks_Empty(t *testing.T) {
	for _, in := range []string{`[]`, `{}`, `{"findings":null,"results":[]}`} {
		got, err := Normalize("gitleaks", decode(t, in))
		require.NoError(t, err, in)
		assert.Empty(t, got, in)
	}
}

func TestGitleaks_Malformed(t *testing.T) {
	for _, in := range []string{`"text"`, `42`, `{"findings":{"a":1}}`, `["x"]`} {
		_, err := Normalize("gitleaks", decode(t, in))
		assert.ErrorIs(t, err, ErrMalformedInput, in)
	}
}

func TestGosec_LineRanges(t *testing.T) {
	doc := decode(t, `{"Issues":[
		{"severity":"MEDIUM","rule_id":"G104","file":"/src/main.go","line":"12-14","details":"Errors unhandled."},
		{"severity":"high","rule_id":"G101","file":"/src/creds.go","line":"9","details":"Potential hardcoded credentials"},
		{"severity":"LOW","rule_id":"G307","file":"/src/f.go","line":"n/a"}
	]}`)
	got, err := Normalize("gosec", doc)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 12, got[0].Line)
	assert.Equal(t, types.SevHigh, got[1].Severity)
	assert.Equal(t, 9, got[1].Line)
	assert.Equal(t, 0, got[2].Line)
	assert.Equal(t, "sast", got[2].Gate)
}

func TestUnsupportedTool(t *testing.T) {
	_, err := Normalize("trivy", decode(t, `{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedTool)
	assert.Contains(t, err.Error(), "trivy")
}

func TestToolNamesAreCaseInsensitive(t *testing.T) {
	got, err := Normalize("  SemGrep ", decode(t, `{"results":[]}`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTools(t *testing.T) {
	assert.Equal(t, []string{"gitleaks", "gosec", "semgrep"}, Names())
	for _, tool := range Tools() {
		assert.NotEmpty(t, tool.Gate, tool.Name)
	}
}

func TestLineOf(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{json.Number("5"), 5},
		{json.Number("5.9"), 5},
		{json.Number("-3"), 0},
		{float64(8), 8},
		{"42", 42},
		{" 7-9", 7},
		{"abc", 0},
		{true, 0},
		{nil, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, lineOf(c.in), "%v", c.in)
	}
}

func TestNonStringScalarsAreStringified(t *testing.T) {
	doc := decode(t, `{"results":[{"check_id":1234,"path":["a","b"],"extra":{"severity":"warning","message":{"text":"x"}}}]}`)
	got, err := Normalize("semgrep", doc)
	require.NoError(t, err)
	assert.Equal(t, "1234", got[0].RuleID)
	assert.Equal(t, "unknown", got[0].Path)
	assert.Equal(t, "", got[0].Message)
}

func TestNormalize_PreservesOrder(t *testing.T) {
	doc := decode(t, `{"results":[{"check_id":"b"},{"check_id":"a"},{"check_id":"c"}]}`)
	got, err := Normalize("semgrep", doc)
	require.NoError(t, err)
	var ids []string
	for _, f := range got {
		ids = append(ids, f.RuleID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestFromRecord_RoundTripIsIdempotent(t *testing.T) {
	doc := decode(t, `{"results":[{"check_id":"r","path":"p.go","start":{"line":2},"extra":{"severity":"info","message":"m"}}]}`)
	first, err := Normalize("semgrep", doc)
	require.NoError(t, err)

	b, err := json.Marshal(first)
	require.NoError(t, err)
	var recs []map[string]any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&recs))

	assert.Equal(t, first, FromRecords(recs))
}

func TestFromRecord_RepairsHandWrittenEvidence(t *testing.T) {
	f := FromRecord(map[string]any{"severity": "medium", "line": json.Number("-1")})
	assert.Equal(t, types.SevMedium, f.Severity)
	assert.Equal(t, "unknown", f.RuleID)
	assert.Equal(t, "unknown", f.Path)
	assert.Equal(t, 0, f.Line)
	assert.Equal(t, "", f.Gate)
}
