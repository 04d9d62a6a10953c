package report

import (
	"encoding/json"
	"io"

	"github.com/redactyl/evgate/internal/gate"
	"github.com/redactyl/evgate/internal/types"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string         `json:"id"`
	ShortDescription sarifMessage   `json:"shortDescription"`
	Properties       map[string]any `json:"properties,omitempty"`
}

type sarifResult struct {
	RuleID              string             `json:"ruleId"`
	RuleIndex           int                `json:"ruleIndex"`
	Level               string             `json:"level"`
	Message             sarifMessage       `json:"message"`
	Locations           []sarifLoc         `json:"locations"`
	PartialFingerprints map[string]string  `json:"partialFingerprints"`
	Suppressions        []sarifSuppression `json:"suppressions,omitempty"`
	Properties          map[string]any     `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

type sarifSuppression struct {
	Kind          string `json:"kind"`
	Justification string `json:"justification,omitempty"`
}

// sarifLevel maps severities onto the three SARIF result levels. Tool
// specific spellings (semgrep's ERROR/WARNING) are folded in.
func sarifLevel(s types.Severity) string {
	switch s {
	case types.SevCritical, types.SevHigh, "ERROR":
		return "error"
	case types.SevMedium, "WARNING":
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes every evaluated finding as SARIF 2.1.0. Allowlisted
// findings are kept but carry an external suppression so code scanning
// shows them as dismissed.
func WriteSARIF(w io.Writer, r *gate.Result, version string) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           "evgate",
			Version:        version,
			InformationURI: "https://github.com/redactyl/evgate",
			Rules:          []sarifRule{},
		}},
		Results: []sarifResult{},
		Properties: map[string]any{
			"verdict":  string(r.Verdict),
			"filtered": r.Filtered,
			"unknown":  r.Unknown,
		},
	}

	ruleIndex := map[string]int{}
	for i, f := range r.Findings {
		idx, ok := ruleIndex[f.RuleID]
		if !ok {
			idx = len(run.Tool.Driver.Rules)
			ruleIndex[f.RuleID] = idx
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
				ID:               f.RuleID,
				ShortDescription: sarifMessage{Text: f.RuleID},
				Properties:       map[string]any{"tool": f.Tool, "gate": f.Gate},
			})
		}

		msg := f.Message
		if msg == "" {
			msg = f.RuleID
		}
		phys := sarifPhys{ArtifactLocation: sarifArt{URI: f.Path}}
		if f.Line > 0 {
			phys.Region = &sarifRegion{StartLine: f.Line}
		}
		res := sarifResult{
			RuleID:              f.RuleID,
			RuleIndex:           idx,
			Level:               sarifLevel(f.Severity),
			Message:             sarifMessage{Text: msg},
			Locations:           []sarifLoc{{PhysicalLocation: phys}},
			PartialFingerprints: map[string]string{"evgate/v1": f.Fingerprint()},
			Properties:          map[string]any{"severity": string(f.Severity), "tool": f.Tool},
		}
		if i < len(r.Allowlisted) && r.Allowlisted[i] {
			res.Suppressions = []sarifSuppression{{Kind: "external", Justification: "rule_id allowlisted by policy"}}
		}
		run.Results = append(run.Results, res)
	}

	doc := sarif{Schema: sarifSchema, Version: "2.1.0", Runs: []sarifRun{run}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
