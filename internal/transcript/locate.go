// Package transcript locates, reads and rewrites chat session transcripts.
package transcript

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ext is the transcript file extension.
const Ext = ".jsonl"

// ErrNotFound is returned when no transcript exists for a session.
var ErrNotFound = errors.New("transcript not found")

var projectNameRe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Layout resolves the on-disk locations used for one project.
type Layout struct {
	ClaudeDir     string // e.g. ~/.claude
	WorkDir       string // project working directory
	BackupDirName string // directory under the project dir holding backups
}

// ProjectName returns the directory name used for workDir under projects/.
func ProjectName(workDir string) string {
	return projectNameRe.ReplaceAllString(filepath.Clean(workDir), "-")
}

// ProjectDir returns <claude dir>/projects/<project name>.
func (l Layout) ProjectDir() string {
	return filepath.Join(l.ClaudeDir, "projects", ProjectName(l.WorkDir))
}

// Path returns the transcript path for sessionID.
func (l Layout) Path(sessionID string) string {
	return filepath.Join(l.ProjectDir(), sessionID+Ext)
}

// BackupDir returns the backup directory of the project.
func (l Layout) BackupDir() string {
	return filepath.Join(l.ProjectDir(), l.BackupDirName)
}

// ValidateID rejects session ids that could escape the project directory.
// Ids that are not UUIDs are allowed but logged.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("session id must not be empty")
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("invalid session id %q", id)
	}
	if _, err := uuid.Parse(id); err != nil {
		slog.Warn("session id is not a UUID", "session_id", id)
	}
	return nil
}

// LatestSession returns the id of the most recently modified transcript in
// the project directory.
func (l Layout) LatestSession() (string, error) {
	dir := l.ProjectDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: no sessions in %s", ErrNotFound, dir)
		}
		return "", err
	}

	var (
		latestID  string
		latestMod time.Time
	)
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), Ext) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		if latestID == "" || info.ModTime().After(latestMod) {
			latestID = strings.TrimSuffix(de.Name(), Ext)
			latestMod = info.ModTime()
		}
	}
	if latestID == "" {
		return "", fmt.Errorf("%w: no sessions in %s", ErrNotFound, dir)
	}
	return latestID, nil
}
