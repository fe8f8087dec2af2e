package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jbonatakis/accomplish/internal/home"
)

// RenderSettingsModal renders the settings dialog centered in the window.
func RenderSettingsModal(m Model, s SettingsModal) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	tabStyle := lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("240"))
	activeTabStyle := tabStyle.Copy().Foreground(lipgloss.Color("46")).Underline(true)
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	tabs := make([]string, 0, len(home.SettingsTabs))
	for _, t := range home.SettingsTabs {
		label := m.catalog.T("settings.tabs." + string(t))
		if t == s.Tab {
			tabs = append(tabs, activeTabStyle.Render(label))
			continue
		}
		tabs = append(tabs, tabStyle.Render(label))
	}

	lines := []string{
		titleStyle.Render(m.catalog.T("settings.title")),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
	}
	lines = append(lines, settingsTabLines(m, s)...)
	if s.err != nil {
		lines = append(lines, "", errorStyle.Render(s.err.Error()))
	}
	lines = append(lines, "", hintStyle.Render(settingsHint(s)))

	modalWidth := 60
	if m.windowWidth > 0 && m.windowWidth < modalWidth+4 {
		modalWidth = m.windowWidth - 4
	}
	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("69")).
		Padding(1, 2).
		Width(modalWidth)
	modal := modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	if m.windowWidth <= 0 || m.windowHeight <= 0 {
		return modal
	}
	return lipgloss.Place(m.windowWidth, m.windowHeight-1, lipgloss.Center, lipgloss.Center, modal)
}

func settingsTabLines(m Model, s SettingsModal) []string {
	itemStyle := lipgloss.NewStyle().Padding(0, 2)
	highlightStyle := itemStyle.Copy().Foreground(lipgloss.Color("46")).Background(lipgloss.Color("236"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	readyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	row := func(i int, text string) string {
		if i == s.Selected {
			return highlightStyle.Render(text)
		}
		return itemStyle.Render(text)
	}

	var lines []string
	switch s.Tab {
	case home.TabProviders:
		for i, p := range s.Providers {
			status := mutedStyle.Render(m.catalog.T("settings.notConfigured"))
			if p.Ready {
				status = readyStyle.Render(m.catalog.T("settings.ready"))
			}
			lines = append(lines, row(i, fmt.Sprintf("%-12s", p.Name))+" "+status)
		}
		if s.Editing && s.Selected < len(s.Providers) {
			label := fmt.Sprintf(m.catalog.T("settings.enterKey"), s.Providers[s.Selected].Name)
			lines = append(lines, "", label, s.Input.View())
		}
	case home.TabVoice:
		label := m.catalog.T("settings.voiceDisabled")
		if s.Config.Voice.Enabled {
			label = m.catalog.T("settings.voiceEnabled")
		}
		lines = append(lines, row(0, label))
	case home.TabSkills:
		for i, sk := range s.Skills {
			lines = append(lines, row(i, sk.Command)+" "+mutedStyle.Render(sk.Description))
		}
	case home.TabConnectors:
		if len(s.Config.Connectors) == 0 {
			lines = append(lines, mutedStyle.Render(m.catalog.T("settings.noConnectors")))
		}
		for i, c := range s.Config.Connectors {
			lines = append(lines, row(i, c.Name)+" "+mutedStyle.Render(c.URL))
		}
	}
	return lines
}

func settingsHint(s SettingsModal) string {
	if s.saving {
		return "saving..."
	}
	if s.Editing {
		return "[enter] save  [esc] cancel"
	}
	parts := []string{"[←/→] tab", "[↑/↓] move"}
	switch s.Tab {
	case home.TabProviders:
		parts = append(parts, "[enter] set key")
	case home.TabVoice:
		parts = append(parts, "[enter] toggle")
	}
	parts = append(parts, "[esc] close")
	return strings.Join(parts, "  ")
}
