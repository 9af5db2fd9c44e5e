// Package backup names, selects and copies transcript backups.
//
// A backup of session <id> is stored as "<id>.jsonl.<unixMillis>" inside a
// per-project backup directory.
package backup

import (
	"strconv"
	"strings"
	"time"
)

// Entry is a single backup file.
type Entry struct {
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

// Time returns the backup timestamp as a time.Time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// prefix returns the file name prefix shared by every backup of sessionID.
func prefix(sessionID string) string {
	return sessionID + ".jsonl."
}

// FileName returns the backup file name for sessionID taken at t.
func FileName(sessionID string, t time.Time) string {
	return prefix(sessionID) + strconv.FormatInt(t.UnixMilli(), 10)
}

// ParseName reports whether name is a backup of sessionID and returns its entry.
func ParseName(name, sessionID string) (Entry, bool) {
	if !strings.HasPrefix(name, prefix(sessionID)) {
		return Entry{}, false
	}
	suffix := name[strings.LastIndex(name, ".")+1:]
	ts, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return Entry{}, false
	}
	return Entry{Name: name, Timestamp: ts}, true
}

// SelectLatest returns the backup of sessionID with the highest timestamp.
// On equal timestamps the earliest name in names wins.
func SelectLatest(names []string, sessionID string) (Entry, bool) {
	var (
		best  Entry
		found bool
	)
	for _, name := range names {
		e, ok := ParseName(name, sessionID)
		if !ok {
			continue
		}
		if !found || e.Timestamp > best.Timestamp {
			best, found = e, true
		}
	}
	return best, found
}
