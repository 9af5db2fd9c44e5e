package cmd

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/ccprune/internal/transcript"
	"github.com/fakeyudi/ccprune/internal/tui"
)

// confirm asks the user before a destructive write to path. The prompt is
// abandoned with transcript.ErrModified if path changes while it is open.
func confirm(cmd *cobra.Command, path, prompt string) (bool, error) {
	guard, err := transcript.Watch(cmd.Context(), path)
	if err != nil {
		return false, err
	}
	defer guard.Close()

	ok, err := tui.Confirm(guard.Context(), prompt, tea.WithOutput(cmd.ErrOrStderr()))
	if errors.Is(err, tui.ErrAborted) && guard.Changed() {
		return false, transcript.ErrModified
	}
	return ok, err
}

// withSpinner runs fn behind a spinner on interactive terminals.
func withSpinner(cmd *cobra.Command, title string, fn func() error) error {
	if !isInteractive() {
		return fn()
	}
	return tui.RunSpinner(title, fn, tea.WithOutput(cmd.ErrOrStderr()))
}
