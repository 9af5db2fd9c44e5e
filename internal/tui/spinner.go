package tui

import (
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type taskDoneMsg struct{ err error }

// spinnerModel animates while a task runs and quits when it finishes.
// Keys and interrupts are ignored: the task is a file rewrite that must not
// be cut short.
type spinnerModel struct {
	spinner spinner.Model
	title   string
	task    func() error
	done    bool
	err     error
}

func newSpinner(title string, task func() error) spinnerModel {
	return spinnerModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		title:   title,
		task:    task,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	task := m.task
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return taskDoneMsg{err: task()}
	})
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done, m.err = true, msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}

// RunSpinner shows a spinner labelled title while fn runs and returns fn's
// error. fn runs exactly once, even if the program fails to start.
func RunSpinner(title string, fn func() error, opts ...tea.ProgramOption) error {
	var (
		once    sync.Once
		taskErr error
	)
	run := func() error {
		once.Do(func() { taskErr = fn() })
		return taskErr
	}

	opts = append([]tea.ProgramOption{tea.WithInput(nil)}, opts...)
	final, err := tea.NewProgram(newSpinner(title, run), opts...).Run()
	if err != nil {
		return run()
	}
	if m, ok := final.(spinnerModel); ok && m.done {
		return m.err
	}
	return run()
}
