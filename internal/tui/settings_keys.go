package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jbonatakis/accomplish/internal/home"
)

var errEmptyAPIKey = errors.New("api key is required")

// HandleSettingsKey handles key presses while the settings dialog is open.
func HandleSettingsKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.settingsModal == nil {
		m.actionMode = ActionModeNone
		return m, nil
	}
	state := *m.settingsModal
	if state.saving {
		return m, nil
	}
	if state.Editing {
		return handleSettingsEditKey(m, state, msg)
	}

	switch msg.String() {
	case "esc":
		m.ctrl.SettingsDialogChange(false)
		return m.syncSettingsDialog(), nil
	case "left", "shift+tab":
		state.shiftTab(-1)
	case "right", "tab":
		state.shiftTab(1)
	case "up", "k":
		if state.Selected > 0 {
			state.Selected--
		}
	case "down", "j":
		if state.Selected < state.rowCount()-1 {
			state.Selected++
		}
	case "enter", " ":
		return handleSettingsActivate(m, state)
	}
	m.settingsModal = &state
	return m, nil
}

func handleSettingsActivate(m Model, state SettingsModal) (Model, tea.Cmd) {
	switch state.Tab {
	case home.TabProviders:
		if len(state.Providers) == 0 {
			break
		}
		state.Editing = true
		state.err = nil
		state.Input.SetValue("")
		cmd := state.Input.Focus()
		m.settingsModal = &state
		return m, cmd
	case home.TabVoice:
		state.saving = true
		m.settingsModal = &state
		return m, SaveVoiceCmd(m.configPath, !state.Config.Voice.Enabled)
	}
	m.settingsModal = &state
	return m, nil
}

func handleSettingsEditKey(m Model, state SettingsModal, msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		state.Editing = false
		state.err = nil
		state.Input.Blur()
		state.Input.SetValue("")
		m.settingsModal = &state
		return m, nil
	case "enter":
		key := strings.TrimSpace(state.Input.Value())
		if key == "" {
			state.err = errEmptyAPIKey
			m.settingsModal = &state
			return m, nil
		}
		name := state.Providers[state.Selected].Name
		state.saving = true
		m.settingsModal = &state
		return m, SaveAPIKeyCmd(m.configPath, name, key)
	}
	var cmd tea.Cmd
	state.Input, cmd = state.Input.Update(msg)
	m.settingsModal = &state
	return m, cmd
}
