package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fakeyudi/ccprune/internal/fsutil"
)

// ErrNoBackup is returned by Latest when a session has no eligible backup.
var ErrNoBackup = errors.New("no backup found")

// Store keeps transcript backups in a directory.
type Store interface {
	Create(sessionID string, data []byte, now time.Time) (Entry, error)
	List(sessionID string) ([]Entry, error) // newest first
	Latest(sessionID string) (Entry, error) // returns ErrNoBackup if none exists
	Restore(e Entry, dest string) error
	Path(e Entry) string
}

// diskStore is the concrete Store backed by a single directory.
type diskStore struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created on the
// first Create.
func NewStore(dir string) Store {
	return &diskStore{dir: dir}
}

func (d *diskStore) Path(e Entry) string {
	return filepath.Join(d.dir, e.Name)
}

// backupPerm is owner-only, like the chat client's own transcripts.
const backupPerm = 0o600

// Create writes data into the backup directory under a timestamped name.
func (d *diskStore) Create(sessionID string, data []byte, now time.Time) (Entry, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("creating backup directory: %w", err)
	}
	name := FileName(sessionID, now)
	e, _ := ParseName(name, sessionID)
	if err := fsutil.WriteNew(d.Path(e), data, backupPerm); err != nil {
		return Entry{}, fmt.Errorf("failed to write backup: %w", err)
	}
	return e, nil
}

// names returns the file names in the backup directory. A missing directory
// yields no names.
func (d *diskStore) names() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		names = append(names, de.Name())
	}
	return names, nil
}

func (d *diskStore) List(sessionID string) ([]Entry, error) {
	names, err := d.names()
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, name := range names {
		if e, ok := ParseName(name, sessionID); ok {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out, nil
}

func (d *diskStore) Latest(sessionID string) (Entry, error) {
	names, err := d.names()
	if err != nil {
		return Entry{}, err
	}
	e, ok := SelectLatest(names, sessionID)
	if !ok {
		return Entry{}, fmt.Errorf("%w for session %s", ErrNoBackup, sessionID)
	}
	return e, nil
}

// Restore replaces dest with the contents of backup e.
func (d *diskStore) Restore(e Entry, dest string) error {
	data, err := os.ReadFile(d.Path(e))
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if err := fsutil.WriteAtomic(dest, data, fsutil.Mode(dest, 0o644)); err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	return nil
}
