package evgate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/redactyl/evgate/internal/audit"
)

var (
	flagAuditRoot  string
	flagAuditLimit int
	flagAuditJSON  bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recorded evaluations, newest first",
		Long:  "Audit reads the log appended by `evgate evaluate --audit` (.git/evgate_audit.jsonl inside a repository).",
		Args:  cobra.NoArgs,
		RunE:  runAudit,
	}
	cmd.Flags().StringVar(&flagAuditRoot, "root", ".", "repository the log belongs to")
	cmd.Flags().IntVar(&flagAuditLimit, "limit", 20, "records to show (0 for all)")
	cmd.Flags().BoolVar(&flagAuditJSON, "json", false, "print records as JSON")
	rootCmd.AddCommand(cmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	root, err := filepath.Abs(flagAuditRoot)
	if err != nil {
		return err
	}
	records, err := audit.NewAuditLog(root).LoadHistory()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if flagAuditLimit > 0 && len(records) > flagAuditLimit {
		records = records[:flagAuditLimit]
	}

	out := cmd.OutOrStdout()
	if flagAuditJSON {
		if records == nil {
			records = []audit.Record{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No audit records")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header("Time", "Verdict", "Total", "Filtered", "Unknown", "Commit", "Branch", "Violations")
	for _, r := range records {
		commit := r.Commit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		if err := table.Append([]string{
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Verdict,
			strconv.Itoa(r.TotalFindings),
			strconv.Itoa(r.Filtered),
			strconv.Itoa(r.Unknown),
			commit,
			r.Branch,
			strings.Join(r.Violations, "; "),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
