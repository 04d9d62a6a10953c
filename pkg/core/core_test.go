package core

import (
	"bytes"
	"errors"
	"testing"
)

func TestNormalizeAndEvaluate(t *testing.T) {
	doc := []any{map[string]any{"RuleID": "aws", "File": "a.env", "StartLine": float64(3)}}
	fs, err := Normalize("gitleaks", doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(fs) != 1 || fs[0].Line != 3 || fs[0].Severity != "HIGH" {
		t.Fatalf("unexpected findings: %#v", fs)
	}

	var buf bytes.Buffer
	if err := MarshalFindings(&buf, fs); err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalFindings(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if back[0] != fs[0] {
		t.Fatalf("round trip mismatch: %#v != %#v", back[0], fs[0])
	}

	zero := 0
	res := Evaluate(back, &Policy{MaxFindings: map[string]*int{"HIGH": &zero}, FailOnUnknownSeverity: true})
	if res.Passed() {
		t.Fatal("expected FAIL")
	}
}

func TestErrorsAreExported(t *testing.T) {
	_, err := Normalize("nope", nil)
	if !errors.Is(err, ErrUnsupportedTool) {
		t.Fatalf("expected ErrUnsupportedTool, got %v", err)
	}
	if _, err := Run(Config{Root: t.TempDir(), Policy: &Policy{}}); !errors.Is(err, ErrNoEvidence) {
		t.Fatalf("expected ErrNoEvidence, got %v", err)
	}
	if len(Tools()) == 0 {
		t.Fatal("expected tools")
	}
}
