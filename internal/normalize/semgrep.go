package normalize

import "github.com/redactyl/evgate/internal/types"

func init() {
	register(Tool{
		Name:    "semgrep",
		Gate:    types.GateSAST,
		records: semgrepResults,
		fields: fieldTable{
			severity: paths("extra.severity"),
			ruleID:   paths("check_id"),
			path:     paths("path"),
			line:     paths("start.line"),
			message:  paths("extra.message"),
		},
	})
}

// semgrepResults reads the `results` list of a `semgrep --json` report.
func semgrepResults(doc any) ([]any, error) {
	obj, err := wantObject(doc)
	if err != nil {
		return nil, err
	}
	return listAt(obj, "results")
}
