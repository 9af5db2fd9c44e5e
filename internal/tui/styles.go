package tui

import "github.com/charmbracelet/lipgloss"

var (
	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	yesStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	noStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)
