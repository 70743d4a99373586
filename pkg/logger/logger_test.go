package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "json", Prefix: "bank"}, &buf)

	l.Debug("transaction applied", "sequence", 1)
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "transaction applied", entry["msg"])
	assert.Equal(t, "bank", entry["prefix"])
	assert.Contains(t, entry, "sequence")
}

func TestNewLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "WARN", Format: "logfmt"}, &buf)

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("transaction rejected", "error", "insufficient funds")
	assert.Contains(t, buf.String(), "transaction rejected")
}

func TestNewDefaults(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "nope", Format: "nope"}, &buf)

	l.Debug("hidden")
	assert.Empty(t, buf.String())
	l.Info("account opened", "account_id", 1)
	assert.Contains(t, buf.String(), "account opened")
}
