package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONVerbose(t *testing.T) {
	old := Logger
	t.Cleanup(func() { Logger = old })

	var buf bytes.Buffer
	Setup(&buf, "json", true)
	Debug("reading evidence", "file", "a.json")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "a.json", rec["file"])
}

func TestSetup_TextHidesDebug(t *testing.T) {
	old := Logger
	t.Cleanup(func() { Logger = old })

	var buf bytes.Buffer
	Setup(&buf, "text", false)
	Debug("hidden")
	Warn("policy warning", "detail", "x")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "policy warning")
}
