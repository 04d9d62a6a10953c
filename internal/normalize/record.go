package normalize

import "github.com/redactyl/evgate/internal/types"

// recordFields reads findings back from persisted evidence. Hand-written
// evidence may omit fields or use lowercase severities; both are repaired by
// types.Canonical.
var recordFields = fieldTable{
	gate:     paths("gate"),
	tool:     paths("tool"),
	severity: paths("severity"),
	ruleID:   paths("rule_id"),
	path:     paths("path"),
	line:     paths("line"),
	message:  paths("message"),
}

// FromRecord converts one evidence object into a canonical finding.
func FromRecord(rec map[string]any) types.Finding {
	// flat paths never traverse nested objects, so lookup cannot fail
	f, _ := recordFields.finding(rec)
	return types.Canonical(f)
}

// FromRecords converts a list of evidence objects, preserving order.
func FromRecords(recs []map[string]any) []types.Finding {
	out := make([]types.Finding, 0, len(recs))
	for _, r := range recs {
		out = append(out, FromRecord(r))
	}
	return out
}
