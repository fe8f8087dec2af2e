package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jbonatakis/accomplish/internal/config"
)

type spinnerTickMsg struct{}

// busy reports whether something is running that the spinner should show.
func (m Model) busy() bool {
	return m.actionInProgress || m.tasks.IsLoading()
}

func (m *Model) startTicking() tea.Cmd {
	if m.ticking || !m.busy() {
		return nil
	}
	m.ticking = true
	return m.spinnerTickCmd()
}

func (m Model) spinnerTickCmd() tea.Cmd {
	interval := time.Duration(m.config.TUI.RefreshIntervalMillis) * time.Millisecond
	if interval <= 0 {
		interval = config.DefaultRefreshIntervalMillis * time.Millisecond
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

