package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/ccprune/internal/transcript"
)

const sessionID = "0f8c1a9e-3b1e-4c55-a7d2-7f3f0e6c2b11"

// sampleTranscript has assistant messages at lines 2, 5 and 8.
func sampleTranscript() []string {
	return []string{
		`{"type":"summary","sessionId":"` + sessionID + `"}`,
		`{"type":"user","message":{"content":"one"}}`,
		`{"type":"assistant","message":{"usage":{"cache_read_input_tokens":40}}}`,
		`{"type":"tool_result","content":"ls output"}`,
		`{"type":"user","message":{"content":"two"}}`,
		`{"type":"assistant","message":{"usage":{"cache_read_input_tokens":80}}}`,
		`not json`,
		`{"type":"user","message":{"content":"three"}}`,
		`{"type":"assistant","message":{"usage":{"cache_read_input_tokens":120}}}`,
	}
}

type summaryJSON struct {
	Backup            string `json:"backup"`
	Keep              int    `json:"keep"`
	Kept              int    `json:"kept"`
	Dropped           int    `json:"dropped"`
	AssistantMessages int    `json:"assistant_messages"`
	LinesBefore       int    `json:"lines_before"`
	LinesAfter        int    `json:"lines_after"`
	DryRun            bool   `json:"dry_run"`
}

func decodeSummary(t *testing.T, out string) summaryJSON {
	t.Helper()
	var s summaryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &s), "output: %s", out)
	return s
}

func TestPruneDryRunWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeTranscript(t, sessionID, sampleTranscript()...)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	out, err := env.run("prune", sessionID, "-k", "1", "--dry-run", "--format", "json")
	require.NoError(t, err)

	s := decodeSummary(t, out)
	require.True(t, s.DryRun)
	require.Equal(t, 1, s.Kept)
	require.Equal(t, 5, s.Dropped)
	require.Equal(t, 3, s.AssistantMessages)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
	_, err = os.Stat(env.layout.BackupDir())
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPruneWritesBackupAndTranscript(t *testing.T) {
	env := newTestEnv(t)
	lines := sampleTranscript()
	path := env.writeTranscript(t, sessionID, lines...)

	out, err := env.run("prune", sessionID, "--keep", "2", "--format", "json")
	require.NoError(t, err)

	s := decodeSummary(t, out)
	require.Equal(t, 3, s.Kept)
	require.Equal(t, 3, s.Dropped)
	require.Equal(t, 9, s.LinesBefore)
	require.Equal(t, 6, s.LinesAfter)
	require.FileExists(t, s.Backup)
	require.Equal(t, env.layout.BackupDir(), filepath.Dir(s.Backup))

	backupData, err := os.ReadFile(s.Backup)
	require.NoError(t, err)
	require.Equal(t, transcript.JoinLines(lines), string(backupData))

	snap, err := transcript.Read(path)
	require.NoError(t, err)
	require.Equal(t, []string{
		lines[0],
		lines[3],
		lines[5],
		lines[6],
		lines[7],
		`{"type":"assistant","message":{"usage":{"cache_read_input_tokens":0}}}`,
	}, snap.Lines)
}

func TestPruneKeepFromProjectConfig(t *testing.T) {
	env := newTestEnv(t)
	env.writeTranscript(t, sessionID, sampleTranscript()...)
	require.NoError(t, os.WriteFile(filepath.Join(env.workDir, ".ccpruneconfig"),
		[]byte(`{"default_keep": 1, "default_format": "json"}`), 0o644))

	out, err := env.run("prune", sessionID, "--dry-run")
	require.NoError(t, err)
	s := decodeSummary(t, out)
	require.Equal(t, 1, s.Kept)
}

func TestPruneUsesLatestSessionWhenOmitted(t *testing.T) {
	env := newTestEnv(t)
	env.writeTranscript(t, sessionID, sampleTranscript()...)

	out, err := env.run("prune", "-k", "3", "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, "Dry run for session "+sessionID)
	require.Contains(t, out, "No changes written.")
}

func TestPruneNothingToDo(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeTranscript(t, "s1",
		`{"type":"summary"}`,
		`{"type":"user"}`,
		`{"type":"assistant"}`,
	)

	out, err := env.run("prune", "s1", "-k", "5")
	require.NoError(t, err)
	require.Contains(t, out, "Nothing to prune.")
	require.NoDirExists(t, env.layout.BackupDir())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{\"type\":\"summary\"}\n{\"type\":\"user\"}\n{\"type\":\"assistant\"}\n", string(data))
}

func TestPruneMissingTranscript(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("prune", sessionID)
	require.Error(t, err)
	require.True(t, errors.Is(err, transcript.ErrNotFound), "got %v", err)
}

func TestPruneRejectsPathLikeSessionID(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("prune", "../escape")
	require.ErrorContains(t, err, "invalid session id")
}

func TestPruneRejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t)
	env.writeTranscript(t, sessionID, sampleTranscript()...)
	_, err := env.run("prune", sessionID, "--format", "xml")
	require.ErrorContains(t, err, `unknown format "xml"`)
}

func TestPruneKeepZero(t *testing.T) {
	env := newTestEnv(t)
	env.writeTranscript(t, sessionID, sampleTranscript()...)

	out, err := env.run("prune", sessionID, "-k", "0", "--dry-run", "--format", "json")
	require.NoError(t, err)
	s := decodeSummary(t, out)
	require.Equal(t, 0, s.Kept)
	require.Equal(t, 6, s.Dropped)
	require.Equal(t, 3, s.LinesAfter)
}
