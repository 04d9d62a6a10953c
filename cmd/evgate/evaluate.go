package evgate

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/redactyl/evgate/internal/audit"
	"github.com/redactyl/evgate/internal/gate"
	"github.com/redactyl/evgate/internal/git"
	"github.com/redactyl/evgate/internal/log"
	"github.com/redactyl/evgate/internal/metrics"
	"github.com/redactyl/evgate/internal/policy"
	"github.com/redactyl/evgate/internal/report"
)

var (
	flagRoot             string
	flagEvidence         string
	flagEvalJSON         bool
	flagEvalSARIF        bool
	flagTemplate         string
	flagMetricsTextfile  string
	flagAudit            bool
	flagUploadURL        string
	flagUploadToken      string
	flagNoUploadMetadata bool
	flagStrictPolicy     bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "evaluate [policy]",
		Short: "Evaluate normalized evidence against a severity policy",
		Long: "Evaluate discovers canonical evidence files, counts findings per severity after the " +
			"rule allowlist and compares the counts with the policy limits. Exit status 1 means the " +
			"policy failed.",
		Args: cobra.MaximumNArgs(1),
		RunE: runEvaluate,
		Example: `  evgate evaluate
  evgate evaluate .security/policy.yaml --sarif > evgate.sarif
  evgate evaluate --template markdown --audit`,
	}
	f := cmd.Flags()
	f.StringVar(&flagRoot, "root", ".", "directory evidence patterns and default policy resolve against")
	f.StringVar(&flagEvidence, "evidence", "", "evidence glob (default "+gate.DefaultPattern+")")
	f.BoolVar(&flagEvalJSON, "json", false, "print the result as JSON")
	f.BoolVar(&flagEvalSARIF, "sarif", false, "print the result as SARIF 2.1.0")
	f.StringVar(&flagTemplate, "template", "", "render the result with a built-in template (markdown, github) or a template file")
	f.StringVar(&flagMetricsTextfile, "metrics-textfile", "", "write Prometheus metrics for node_exporter's textfile collector")
	f.BoolVar(&flagAudit, "audit", false, "append a record to the audit log")
	f.StringVar(&flagUploadURL, "upload", "", "POST the result to this URL")
	f.StringVar(&flagUploadToken, "upload-token", "", "bearer token for --upload (default from $EVGATE_UPLOAD_TOKEN)")
	f.BoolVar(&flagNoUploadMetadata, "no-upload-metadata", false, "omit repo, commit and branch from the upload")
	f.BoolVar(&flagStrictPolicy, "strict-policy", false, "treat policy warnings as errors")
	cmd.MarkFlagsMutuallyExclusive("json", "sarif", "template")
	rootCmd.AddCommand(cmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(flagRoot)
	if err != nil {
		return err
	}

	// An explicit argument is used as given; configured or default paths
	// live in the evaluated tree.
	policyPath := ""
	if len(args) == 1 {
		policyPath = args[0]
	} else {
		policyPath = orDefault(pickString("", localCfg.Policy, globalCfg.Policy), policy.DefaultPath)
		if !filepath.IsAbs(policyPath) {
			policyPath = filepath.Join(root, policyPath)
		}
	}
	p, err := policy.Load(policyPath)
	if err != nil {
		return err
	}
	for _, w := range p.Warnings {
		log.Warn("policy", "path", policyPath, "warning", w)
	}
	if pickBool(flagStrictPolicy, localCfg.StrictPolicy, globalCfg.StrictPolicy) {
		if err := p.Strict(); err != nil {
			return fmt.Errorf("%s: %w", policyPath, err)
		}
	}

	pattern := orDefault(pickString(flagEvidence, localCfg.EvidenceGlob, globalCfg.EvidenceGlob), gate.DefaultPattern)
	res, err := gate.Run(gate.Config{Root: root, Pattern: pattern, Policy: p})
	if err != nil {
		return err
	}
	log.Debug("evaluated", "files", len(res.EvidenceFiles), "total", res.Total, "verdict", res.Verdict)

	out := cmd.OutOrStdout()
	tmpl := pickString(flagTemplate, localCfg.Template, globalCfg.Template)
	switch {
	case flagEvalSARIF:
		err = report.WriteSARIF(out, res, version)
	case flagEvalJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(res)
	case tmpl != "":
		err = report.RenderTemplate(out, tmpl, res)
	default:
		report.PrintSummary(out, res, report.Options{Color: report.UseColor(out, noColor())})
	}
	if err != nil {
		return err
	}
	for _, v := range res.Violations {
		log.Info("policy violation", "detail", v)
	}

	if path := pickString(flagMetricsTextfile, localCfg.MetricsTextfile, globalCfg.MetricsTextfile); path != "" {
		if err := metrics.WriteResult(path, res); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	var md git.Metadata
	if pickBool(flagAudit, localCfg.Audit, globalCfg.Audit) {
		md = git.RepoMetadata(root)
		al := audit.NewAuditLog(root)
		if err := al.Append(audit.NewRecord(root, policyPath, res, md)); err != nil {
			return err
		}
		log.Debug("audit record written", "path", al.Path())
	}

	up := localCfg.GetUpload()
	if gu := globalCfg.GetUpload(); up.GetURL() == "" {
		up = gu
	}
	if url := orDefault(flagUploadURL, up.GetURL()); url != "" {
		token := orDefault(flagUploadToken, up.GetToken())
		withMeta := !flagNoUploadMetadata && up.IncludeMetadata()
		if withMeta && md == (git.Metadata{}) {
			md = git.RepoMetadata(root)
		}
		if !withMeta {
			md = git.Metadata{}
		}
		if err := uploadResult(url, token, md, res); err != nil {
			log.Warn("upload failed", "url", url, "error", err)
		} else {
			log.Info("uploaded result", "url", url)
		}
	}

	if !res.Passed() {
		return errPolicyFailed
	}
	return nil
}
