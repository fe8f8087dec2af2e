package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the interactive home screen until the user quits.
func Start(d Deps) error {
	model := NewModel(d)
	defer model.Close()
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
