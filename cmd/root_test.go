package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/ccprune/internal/transcript"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	resetFlags(root)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// resetFlags puts every flag of c and its subcommands back to its default so
// values don't leak between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// testEnv is an isolated home, data dir and project for one test.
type testEnv struct {
	claudeDir string
	workDir   string
	layout    transcript.Layout
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", filepath.Join(tmp, "home"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	claudeDir := filepath.Join(tmp, "claude")
	t.Setenv("CLAUDE_CONFIG_DIR", claudeDir)

	workDir := filepath.Join(tmp, "work", "demo")
	require.NoError(t, os.MkdirAll(workDir, 0o755))

	prev := isInteractive
	isInteractive = func() bool { return false }
	t.Cleanup(func() { isInteractive = prev })

	return &testEnv{
		claudeDir: claudeDir,
		workDir:   workDir,
		layout: transcript.Layout{
			ClaudeDir:     claudeDir,
			WorkDir:       workDir,
			BackupDirName: "prune-backup",
		},
	}
}

// writeTranscript stores lines as the transcript of sessionID.
func (e *testEnv) writeTranscript(t *testing.T, sessionID string, lines ...string) string {
	t.Helper()
	path := e.layout.Path(sessionID)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func (e *testEnv) run(args ...string) (string, error) {
	return executeCommand(rootCmd, append(args, "--cwd", e.workDir)...)
}

func TestHelpMentionsRestore(t *testing.T) {
	newTestEnv(t)
	out, err := executeCommand(rootCmd, "--help")
	require.NoError(t, err)
	require.Contains(t, out, "ccprune restore")
}

func TestGlobalConfigParseErrorIsReported(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(os.Getenv("HOME"), ".config", "ccprune")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{oops"), 0o644))

	env.writeTranscript(t, "s1", `{"type":"summary"}`)
	_, err := env.run("prune", "s1", "--dry-run")
	require.ErrorContains(t, err, "loading global config")
}
