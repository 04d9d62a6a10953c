package evgate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redactyl/evgate/internal/gate"
	"github.com/redactyl/evgate/internal/git"
	"github.com/redactyl/evgate/internal/types"
)

const uploadSchemaVersion = "1"

type uploadEnvelope struct {
	Tool    string       `json:"tool"`
	Version string       `json:"version"`
	Schema  string       `json:"schema_version"`
	Repo    string       `json:"repo,omitempty"`
	Commit  string       `json:"commit,omitempty"`
	Branch  string       `json:"branch,omitempty"`
	Result  *gate.Result `json:"result"`
	// Findings lists counted findings only; allowlisted ones are left out.
	Findings []types.Finding `json:"findings"`
}

func uploadResult(url, token string, md git.Metadata, res *gate.Result) error {
	env := uploadEnvelope{
		Tool:     "evgate",
		Version:  version,
		Schema:   uploadSchemaVersion,
		Repo:     md.Repo,
		Commit:   md.Commit,
		Branch:   md.Branch,
		Result:   res,
		Findings: countedFindings(res),
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload status %d", resp.StatusCode)
	}
	return nil
}

func countedFindings(res *gate.Result) []types.Finding {
	out := make([]types.Finding, 0, len(res.Findings))
	for i, f := range res.Findings {
		if i < len(res.Allowlisted) && res.Allowlisted[i] {
			continue
		}
		out = append(out, f)
	}
	return out
}
