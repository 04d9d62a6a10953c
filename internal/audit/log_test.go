package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/evgate/internal/gate"
	"github.com/redactyl/evgate/internal/git"
	"github.com/redactyl/evgate/internal/types"
)

func TestNewAuditLog_PrefersGitDir(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, filepath.Join(root, ".evgate_audit.jsonl"), NewAuditLog(root).Path())

	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	assert.Equal(t, filepath.Join(root, ".git", "evgate_audit.jsonl"), NewAuditLog(root).Path())
}

func TestAppendAndLoad(t *testing.T) {
	log := NewAuditLog(t.TempDir())

	_, err := log.LoadHistory()
	assert.ErrorIs(t, err, os.ErrNotExist)

	r := &gate.Result{
		EvidenceFiles: []string{"a.json"},
		Total:         2,
		Filtered:      1,
		Counts:        map[string]int{"HIGH": 1},
		Verdict:       gate.Fail,
		Violations:    []string{"HIGH: 1 findings exceed the limit of 0"},
		Findings: []types.Finding{
			{Tool: "gitleaks", RuleID: "ok", Severity: "HIGH", Path: "x", Line: 1},
			{Tool: "gitleaks", RuleID: "aws", Severity: "HIGH", Path: "y", Line: 2},
		},
		Allowlisted: []bool{true, false},
	}
	first := NewRecord("/repo", ".security/policy.json", r, git.Metadata{Repo: "org/repo", Commit: "abc", Branch: "main"})
	require.NoError(t, log.Append(first))

	r.Verdict = gate.Pass
	second := NewRecord("/repo", ".security/policy.json", r, git.Metadata{})
	second.ID = ""
	require.NoError(t, log.Append(second))

	// garbage lines are ignored
	f, err := os.OpenFile(log.Path(), os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, err := log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "PASS", got[0].Verdict)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, "org/repo", got[1].Repo)
	assert.Equal(t, "main", got[1].Branch)
	assert.Equal(t, map[string]int{"HIGH": 1}, got[1].SeverityCounts)
	require.Len(t, got[1].TopFindings, 1)
	assert.Equal(t, "aws", got[1].TopFindings[0].RuleID)

	st, err := os.Stat(log.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}
