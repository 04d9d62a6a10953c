package normalize

import "github.com/redactyl/evgate/internal/types"

func init() {
	register(Tool{
		Name:    "gosec",
		Gate:    types.GateSAST,
		records: gosecIssues,
		fields: fieldTable{
			severity: paths("severity"),
			ruleID:   paths("rule_id"),
			path:     paths("file"),
			// "12" or "12-14" for multi-line issues
			line:    paths("line"),
			message: paths("details"),
		},
	})
}

func gosecIssues(doc any) ([]any, error) {
	obj, err := wantObject(doc)
	if err != nil {
		return nil, err
	}
	return listAt(obj, "Issues")
}
