// Package evidence reads raw tool reports and reads, writes and discovers the
// canonical evidence files produced by normalization.
package evidence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/redactyl/evgate/internal/types"
)

var (
	// ErrInputNotFound is returned when an input file does not exist.
	ErrInputNotFound = errors.New("file not found")

	// ErrInputParse is returned when an input file is not valid JSON or does
	// not have the expected top-level shape.
	ErrInputParse = errors.New("invalid json")

	// ErrInvalidPattern is returned for a malformed discovery glob.
	ErrInvalidPattern = errors.New("invalid evidence pattern")
)

// NormalizedDir is the subdirectory of a tool directory that holds
// canonical evidence.
const NormalizedDir = "normalized"

// Path returns the canonical location for a tool's normalized output of one
// pipeline stage: <dir>/<tool>/normalized/<stage>.json.
func Path(dir, tool, stage string) string {
	return filepath.Join(dir, tool, NormalizedDir, stage+".json")
}

// ReadDocument decodes a JSON file into generic values. Numbers are kept as
// json.Number so integer literals can be told apart from floats.
func ReadDocument(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w in %s: %v", ErrInputParse, path, err)
	}
	return doc, nil
}

func decode(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("extra data after top-level value")
	}
	return doc, nil
}

// ReadRecords reads a canonical evidence file, which must hold a JSON array
// of objects.
func ReadRecords(path string) ([]map[string]any, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	recs, err := records(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v in %s", ErrInputParse, err, path)
	}
	return recs, nil
}

// DecodeRecords is ReadRecords for an already open stream.
func DecodeRecords(r io.Reader) ([]map[string]any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputParse, err)
	}
	recs, err := records(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputParse, err)
	}
	return recs, nil
}

func records(doc any) ([]map[string]any, error) {
	list, ok := doc.([]any)
	if !ok {
		return nil, errors.New("expected list")
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected object at index %d", i)
		}
		out = append(out, rec)
	}
	return out, nil
}

// WriteFindings persists findings as an indented JSON array followed by a
// newline, creating parent directories as needed.
func WriteFindings(path string, findings []types.Finding) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	var buf bytes.Buffer
	if err := EncodeFindings(&buf, findings); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// EncodeFindings writes the canonical encoding of findings to w.
func EncodeFindings(w io.Writer, findings []types.Finding) error {
	if findings == nil {
		findings = []types.Finding{} // no `null` in evidence
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(findings)
}

// Discover returns the files under root matching a doublestar pattern
// (e.g. "evidence/**/normalized/*.json"), sorted, joined with root. An
// absolute pattern ignores root. A relative pattern cannot leave root, so
// ".." segments are rejected. Wildcards also match hidden directories.
func Discover(root, pattern string) ([]string, error) {
	if filepath.IsAbs(pattern) {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		sort.Strings(matches)
		return matches, nil
	}
	pattern = filepath.ToSlash(pattern)
	for _, seg := range strings.Split(pattern, "/") {
		if seg == ".." {
			return nil, fmt.Errorf("%w: %q leaves the root directory (use --root or an absolute pattern)", ErrInvalidPattern, pattern)
		}
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("discovering evidence: %w", err)
	}
	sort.Strings(matches)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(root, filepath.FromSlash(m)))
	}
	return out, nil
}
