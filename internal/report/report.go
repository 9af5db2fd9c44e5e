// Package report renders prune results and backup listings for the terminal
// or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/ccprune/internal/backup"
)

// Summary describes one prune run.
type Summary struct {
	SessionID         string `json:"session_id"`
	Transcript        string `json:"transcript"`
	Backup            string `json:"backup,omitempty"`
	Keep              int    `json:"keep"`
	LinesBefore       int    `json:"lines_before"`
	LinesAfter        int    `json:"lines_after"`
	Kept              int    `json:"kept"`
	Dropped           int    `json:"dropped"`
	AssistantMessages int    `json:"assistant_messages"`
	DryRun            bool   `json:"dry_run"`
}

// BackupList is the set of backups of one session, newest first.
type BackupList struct {
	SessionID string         `json:"session_id"`
	Dir       string         `json:"dir"`
	Entries   []backup.Entry `json:"backups"`
}

// Renderer serializes reports to bytes.
type Renderer interface {
	Render(s *Summary) ([]byte, error)
	RenderBackups(l *BackupList) ([]byte, error)
}

// ForFormat returns the renderer for "text" or "json".
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return &TextRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want text or json)", format)
	}
}

// JSONRenderer renders reports as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(s *Summary) ([]byte, error) {
	return marshal(s)
}

func (r *JSONRenderer) RenderBackups(l *BackupList) ([]byte, error) {
	if l.Entries == nil {
		l.Entries = []backup.Entry{}
	}
	return marshal(l)
}

func marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	droppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	keptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

// TextRenderer renders reports as styled, human-readable text.
type TextRenderer struct{}

func (r *TextRenderer) Render(s *Summary) ([]byte, error) {
	title := "Pruned session " + s.SessionID
	if s.DryRun {
		title = "Dry run for session " + s.SessionID
	}

	rows := []string{
		titleStyle.Render(title),
		row("Transcript", s.Transcript),
		row("Assistant messages", fmt.Sprint(s.AssistantMessages)),
		row("Keeping", fmt.Sprintf("last %d", s.Keep)),
		row("Kept messages", keptStyle.Render(fmt.Sprint(s.Kept))),
		row("Dropped messages", droppedStyle.Render(fmt.Sprint(s.Dropped))),
		row("Lines", fmt.Sprintf("%d -> %d", s.LinesBefore, s.LinesAfter)),
	}
	if s.Backup != "" {
		rows = append(rows, row("Backup", s.Backup))
	}
	if s.DryRun {
		rows = append(rows, dimStyle.Render("No changes written."))
	}
	return []byte(lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"), nil
}

func (r *TextRenderer) RenderBackups(l *BackupList) ([]byte, error) {
	rows := []string{
		titleStyle.Render("Backups of session " + l.SessionID),
		row("Directory", l.Dir),
	}
	if len(l.Entries) == 0 {
		rows = append(rows, dimStyle.Render("  (none)"))
	}
	for i, e := range l.Entries {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		rows = append(rows, fmt.Sprintf("%s %s  %s", marker, e.Name,
			dimStyle.Render(e.Time().Local().Format(time.DateTime))))
	}
	return []byte(lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"), nil
}

func row(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}
