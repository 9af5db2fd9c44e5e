package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/ccprune/internal/backup"
	"github.com/fakeyudi/ccprune/internal/transcript"
)

func TestRestoreNoBackup(t *testing.T) {
	env := newTestEnv(t)
	env.writeTranscript(t, sessionID, sampleTranscript()...)

	_, err := env.run("restore", sessionID)
	require.Error(t, err)
	require.ErrorIs(t, err, backup.ErrNoBackup)
	require.Contains(t, err.Error(), "no backup found for session "+sessionID)
}

func TestPruneThenRestore(t *testing.T) {
	env := newTestEnv(t)
	lines := sampleTranscript()
	path := env.writeTranscript(t, sessionID, lines...)

	_, err := env.run("prune", sessionID, "-k", "1")
	require.NoError(t, err)
	pruned, err := transcript.Read(path)
	require.NoError(t, err)
	require.Less(t, len(pruned.Lines), len(lines))

	out, err := env.run("restore", sessionID)
	require.NoError(t, err)
	require.Contains(t, out, "Restored "+path)

	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, transcript.JoinLines(lines), string(restored))
}

func TestRestorePicksNewestBackup(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeTranscript(t, sessionID, `{"type":"summary"}`)

	dir := env.layout.BackupDir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	files := map[string]string{
		sessionID + ".jsonl.100":        "old\n",
		sessionID + ".jsonl.300":        "newest\n",
		sessionID + ".jsonl.200":        "middle\n",
		sessionID + ".jsonl.notanumber": "bogus\n",
		"other.jsonl.900":               "other\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	out, err := env.run("restore", sessionID, "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, sessionID+".jsonl.300")

	_, err = env.run("restore", sessionID, "--yes")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "newest\n", string(data))
}

func TestBackupsListsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.writeTranscript(t, sessionID, `{"type":"summary"}`)

	dir := env.layout.BackupDir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{sessionID + ".jsonl.5", sessionID + ".jsonl.50", "x.jsonl.7"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0o644))
	}

	out, err := env.run("backups", sessionID, "--format", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"dir": "`+dir+`"`)

	first := strings.Index(out, sessionID+".jsonl.50")
	second := strings.Index(out, sessionID+".jsonl.5\"")
	require.True(t, first >= 0 && second > first, "unexpected order:\n%s", out)
	require.NotContains(t, out, "x.jsonl.7")
}
