// Package audit keeps an append-only JSONL history of gate evaluations.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/redactyl/evgate/internal/gate"
	"github.com/redactyl/evgate/internal/git"
)

const topFindings = 10

// Record is one evaluation.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	Root      string    `json:"root"`
	Policy    string    `json:"policy"`
	git.Metadata

	Verdict        string           `json:"verdict"`
	EvidenceFiles  int              `json:"evidence_files"`
	TotalFindings  int              `json:"total_findings"`
	Filtered       int              `json:"filtered"`
	Unknown        int              `json:"unknown"`
	SeverityCounts map[string]int   `json:"severity_counts"`
	Violations     []string         `json:"violations,omitempty"`
	TopFindings    []FindingSummary `json:"top_findings,omitempty"`
}

type FindingSummary struct {
	Tool     string `json:"tool"`
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Path     string `json:"path"`
	Line     int    `json:"line"`
}

type AuditLog struct {
	logPath string
}

// NewAuditLog places the log inside .git when root is a repository so it
// is never committed by accident.
func NewAuditLog(root string) *AuditLog {
	gitDir := filepath.Join(root, ".git")
	logPath := filepath.Join(root, ".evgate_audit.jsonl")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		logPath = filepath.Join(gitDir, "evgate_audit.jsonl")
	}
	return &AuditLog{logPath: logPath}
}

// Path returns the log file location.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns records newest first. Lines that do not decode are
// skipped.
func (a *AuditLog) LoadHistory() ([]Record, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var record Record
		if err := json.Unmarshal(sc.Bytes(), &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Append writes one record, assigning an id if it has none.
func (a *AuditLog) Append(record Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	// owner-only: records carry rule ids and file paths
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// NewRecord summarizes r for the log.
func NewRecord(root, policyPath string, r *gate.Result, md git.Metadata) Record {
	counts := make(map[string]int, len(r.Counts))
	for k, v := range r.Counts {
		counts[k] = v
	}

	top := make([]FindingSummary, 0, topFindings)
	for i, f := range r.Findings {
		if len(top) >= topFindings {
			break
		}
		if i < len(r.Allowlisted) && r.Allowlisted[i] {
			continue
		}
		top = append(top, FindingSummary{
			Tool:     f.Tool,
			RuleID:   f.RuleID,
			Severity: string(f.Severity),
			Path:     f.Path,
			Line:     f.Line,
		})
	}

	return Record{
		Timestamp:      time.Now().UTC(),
		ID:             uuid.NewString(),
		Root:           root,
		Policy:         policyPath,
		Metadata:       md,
		Verdict:        string(r.Verdict),
		EvidenceFiles:  len(r.EvidenceFiles),
		TotalFindings:  r.Total,
		Filtered:       r.Filtered,
		Unknown:        r.Unknown,
		SeverityCounts: counts,
		Violations:     r.Violations,
		TopFindings:    top,
	}
}
