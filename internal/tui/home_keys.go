package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jbonatakis/accomplish/internal/home"
	"github.com/jbonatakis/accomplish/internal/task"
)

type homeFavorite = task.Favorite

// HandleHomeKey handles key presses on the home view.
func HandleHomeKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return handleHomeEnter(m)
	case "tab":
		return m.cycleFocus(), nil
	case "ctrl+f":
		if len(m.ctrl.DisplayedFavorites()) == 0 {
			return m, nil
		}
		return m.setFocus(FocusFavorites), nil
	case "ctrl+e":
		return m.setFocus(FocusExamples), nil
	case "ctrl+a":
		if m.ctrl.CanShowAllFavorites() {
			m.ctrl.ShowAllFavorites()
		}
		return m, nil
	case "ctrl+k":
		if !m.ctrl.PlusMenuEnabled() {
			return m, nil
		}
		picker := NewSkillPicker(m.skills)
		m.skillPicker = &picker
		m.actionMode = ActionModeSkillPicker
		m.prompt.Blur()
		return m, nil
	case "ctrl+s":
		if !m.ctrl.PlusMenuEnabled() {
			return m, nil
		}
		m.ctrl.OpenSettings(home.TabProviders)
		return m.syncSettingsDialog(), nil
	case "ctrl+o":
		m.ctrl.OpenModelSettings()
		return m.syncSettingsDialog(), nil
	case "ctrl+t":
		m.ctrl.OpenSpeechSettings()
		return m.syncSettingsDialog(), nil
	case "ctrl+x":
		if m.tasks.IsLoading() {
			return m.startAction("Stopping task...", InterruptCmd(m.tasks))
		}
		return m, nil
	case "esc":
		if m.focus != FocusPrompt {
			return m.focusPrompt()
		}
		return m, nil
	}

	switch m.focus {
	case FocusFavorites:
		return handleFavoritesKey(m, msg)
	case FocusExamples:
		return handleExamplesKey(m, msg)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	m.ctrl.SetPrompt(m.prompt.Value())
	return m, cmd
}

func handleHomeEnter(m Model) (Model, tea.Cmd) {
	switch m.focus {
	case FocusFavorites:
		favs := m.ctrl.DisplayedFavorites()
		if m.favoriteIndex < 0 || m.favoriteIndex >= len(favs) {
			return m, nil
		}
		m.ctrl.SelectFavorite(favs[m.favoriteIndex])
		m = m.syncPromptFromController()
		return m.focusPrompt()
	case FocusExamples:
		m.ctrl.SelectExample(m.exampleIndex)
		m = m.syncPromptFromController()
		return m, focusPromptCmd()
	}
	m.ctrl.SetPrompt(m.prompt.Value())
	if m.ctrl.IsLoading() {
		return m.startAction("Stopping task...", SubmitCmd(m.ctrl))
	}
	return m.startAction("Starting task...", SubmitCmd(m.ctrl))
}

func handleFavoritesKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	favs := m.ctrl.DisplayedFavorites()
	if len(favs) == 0 {
		return m.focusPrompt()
	}
	switch msg.String() {
	case "up", "k":
		if m.favoriteIndex > 0 {
			m.favoriteIndex--
		}
	case "down", "j":
		if m.favoriteIndex < len(favs)-1 {
			m.favoriteIndex++
		}
	case "x", "delete":
		if m.favoriteIndex < len(favs) {
			return m.startAction("Removing favorite...", RemoveFavoriteCmd(m.ctrl, favs[m.favoriteIndex].TaskID))
		}
	}
	return m, nil
}

func handleExamplesKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	n := len(m.ctrl.Examples())
	if n == 0 {
		return m, nil
	}
	idx := m.exampleIndex
	switch msg.String() {
	case "left", "h":
		idx--
	case "right", "l":
		idx++
	case "up", "k":
		idx -= exampleColumns
	case "down", "j":
		idx += exampleColumns
	default:
		return m, nil
	}
	if idx >= 0 && idx < n {
		m.exampleIndex = idx
	}
	return m, nil
}

// cycleFocus moves focus prompt -> favorites -> examples, skipping
// favorites when there are none.
func (m Model) cycleFocus() Model {
	next := FocusPrompt
	switch m.focus {
	case FocusPrompt:
		next = FocusFavorites
		if len(m.ctrl.DisplayedFavorites()) == 0 {
			next = FocusExamples
		}
	case FocusFavorites:
		next = FocusExamples
	}
	m = m.setFocus(next)
	if next == FocusPrompt {
		m.prompt.Focus()
	}
	return m
}

// focusPrompt moves focus to the prompt input.
func (m Model) focusPrompt() (Model, tea.Cmd) {
	m.focus = FocusPrompt
	cmd := m.prompt.Focus()
	return m, cmd
}

func (m Model) setFocus(f HomeFocus) Model {
	m.focus = f
	if f != FocusPrompt {
		m.prompt.Blur()
	}
	return m
}

// syncPromptFromController copies the controller's prompt into the input.
func (m Model) syncPromptFromController() Model {
	value := m.ctrl.Prompt()
	if m.prompt.Value() != value {
		m.prompt.SetValue(value)
	}
	return m
}

func (m *Model) clampFavoriteIndex() {
	n := len(m.ctrl.DisplayedFavorites())
	if m.favoriteIndex >= n {
		m.favoriteIndex = n - 1
	}
	if m.favoriteIndex < 0 {
		m.favoriteIndex = 0
	}
	if n == 0 && m.focus == FocusFavorites {
		m.focus = FocusPrompt
		m.prompt.Focus()
	}
}
