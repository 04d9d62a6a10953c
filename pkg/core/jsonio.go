package core

import (
	"io"

	"github.com/redactyl/evgate/internal/evidence"
	"github.com/redactyl/evgate/internal/normalize"
)

// MarshalFindings writes findings in the canonical evidence encoding.
func MarshalFindings(w io.Writer, findings []Finding) error {
	return evidence.EncodeFindings(w, findings)
}

// UnmarshalFindings decodes a canonical evidence array, filling sentinels for
// missing fields.
func UnmarshalFindings(r io.Reader) ([]Finding, error) {
	recs, err := evidence.DecodeRecords(r)
	if err != nil {
		return nil, err
	}
	return normalize.FromRecords(recs), nil
}
