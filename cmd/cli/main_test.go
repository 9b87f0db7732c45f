package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStart(t *testing.T) {
	now := time.Date(2024, 11, 21, 15, 4, 5, 0, time.UTC)

	got, err := parseStart("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 11, 21, 0, 0, 0, 0, time.UTC), got)

	got, err = parseStart("2024-06-01T06:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC), got)

	_, err = parseStart("yesterday", now)
	assert.ErrorContains(t, err, "invalid --start")
}

func TestSimulateCmd_WritesCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "replay.csv")
	cmd := newSimulateCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--start", "2024-11-21T00:00:00Z", "--step", "1h", "--steps", "24", "--out", out})

	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 25)
	assert.Contains(t, buf.String(), "Wrote 24 rows")
}

func TestSummaryCmd(t *testing.T) {
	cmd := newSummaryCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--start", "2024-11-21T00:00:00Z", "--step", "30m", "--steps", "48"})

	require.NoError(t, cmd.Execute())

	text := buf.String()
	for _, name := range []string{"grid", "solar", "battery", "load", "soc", "rate"} {
		assert.Contains(t, text, "\n"+name+" ")
	}
	assert.Contains(t, text, "48")
}

func TestSimulateCmd_RejectsTinyStep(t *testing.T) {
	cmd := newSimulateCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--step", "50ms", "--out", filepath.Join(t.TempDir(), "x.csv")})

	assert.ErrorContains(t, cmd.Execute(), "must exceed the minimum advance")
}
