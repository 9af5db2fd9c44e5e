package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrAborted is returned by Confirm when its context is cancelled before the
// user answers.
var ErrAborted = errors.New("aborted before confirmation")

type abortMsg struct{}

// confirmModel is a single y/N question. Anything but "y" means no.
type confirmModel struct {
	prompt   string
	answered bool
	yes      bool
	aborted  bool
}

func newConfirm(prompt string) confirmModel {
	return confirmModel{prompt: prompt}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch strings.ToLower(msg.String()) {
		case "y":
			m.answered, m.yes = true, true
			return m, tea.Quit
		case "n", "enter", "esc", "q", "ctrl+c":
			m.answered = true
			return m, tea.Quit
		}
	case abortMsg:
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	switch {
	case m.aborted:
		return promptStyle.Render(m.prompt) + " " + noStyle.Render("aborted") + "\n"
	case m.answered && m.yes:
		return promptStyle.Render(m.prompt) + " " + yesStyle.Render("yes") + "\n"
	case m.answered:
		return promptStyle.Render(m.prompt) + " " + noStyle.Render("no") + "\n"
	}
	return promptStyle.Render(m.prompt) + " " + hintStyle.Render("[y/N]")
}

// Confirm asks prompt and reports whether the user answered yes. If ctx is
// cancelled first, the prompt closes and ErrAborted is returned.
func Confirm(ctx context.Context, prompt string, opts ...tea.ProgramOption) (bool, error) {
	p := tea.NewProgram(newConfirm(prompt), opts...)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			p.Send(abortMsg{})
		case <-stop:
		}
	}()

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.aborted {
		return false, ErrAborted
	}
	return m.yes, nil
}
