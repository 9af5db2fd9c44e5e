package transcript

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/fakeyudi/ccprune/internal/fsutil"
)

// ErrModified is returned when a transcript changed after it was read.
var ErrModified = errors.New("transcript was modified while pruning")

// Fingerprint identifies the exact bytes of a transcript.
type Fingerprint uint64

// Snapshot is a transcript as read from disk.
type Snapshot struct {
	Path        string
	Lines       []string
	Fingerprint Fingerprint
}

// Read loads the transcript at path split into lines. A trailing newline does
// not produce an empty last line. Returns ErrNotFound if the file is absent.
func Read(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	return &Snapshot{
		Path:        path,
		Lines:       SplitLines(string(data)),
		Fingerprint: Fingerprint(xxh3.Hash(data)),
	}, nil
}

// SplitLines splits data on "\n", dropping the empty element after a final
// newline.
func SplitLines(data string) []string {
	if data == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(data, "\n"), "\n")
}

// JoinLines is the inverse of SplitLines; the result ends with a newline.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Verify re-reads s.Path and returns its bytes, or ErrModified if they no
// longer match s. Callers back up the returned bytes rather than reading the
// file again.
func (s *Snapshot) Verify() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read transcript: %w", err)
	}
	if Fingerprint(xxh3.Hash(data)) != s.Fingerprint {
		return nil, ErrModified
	}
	return data, nil
}

// Write atomically replaces the transcript at path with lines, keeping the
// file's permission bits.
func Write(path string, lines []string) error {
	if err := fsutil.WriteAtomic(path, []byte(JoinLines(lines)), fsutil.Mode(path, 0o644)); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
