package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jbonatakis/accomplish/internal/home"
)

const exampleColumns = 3

func RenderHomeView(m Model) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	sectionStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	progressStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	lines := []string{
		titleStyle.Render(m.ctrl.Title()),
		"",
		renderPromptBox(m),
	}
	if m.tasks.IsLoading() {
		frame := spinnerFrames[m.spinnerIndex%len(spinnerFrames)]
		lines = append(lines, progressStyle.Render(frame+" Task running  [ctrl+x] stop"))
	}

	if favs := m.ctrl.DisplayedFavorites(); len(favs) > 0 {
		lines = append(lines, "", sectionStyle.Render(m.catalog.T("home.favorites")))
		lines = append(lines, renderFavorites(m, favs)...)
		if m.ctrl.CanShowAllFavorites() {
			label := fmt.Sprintf(m.catalog.T("home.showAllFavorites"), m.ctrl.FavoritesCount())
			lines = append(lines, mutedStyle.Render("[ctrl+a] "+label))
		}
	}

	lines = append(lines, "", sectionStyle.Render(m.ctrl.ExamplePromptsLabel()))
	lines = append(lines, renderExampleGrid(m, m.ctrl.Examples()))

	content := strings.Join(lines, "\n")
	if m.windowWidth <= 0 || m.windowHeight <= 0 {
		return content
	}
	return lipgloss.Place(m.windowWidth, m.windowHeight-1, lipgloss.Center, lipgloss.Center, content)
}

func renderPromptBox(m Model) string {
	color := lipgloss.Color("240")
	if m.focus == FocusPrompt {
		color = lipgloss.Color("69")
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1)
	return style.Render(m.prompt.View())
}

func renderFavorites(m Model, favs []homeFavorite) []string {
	itemStyle := lipgloss.NewStyle().Padding(0, 2)
	highlightStyle := itemStyle.Copy().Foreground(lipgloss.Color("46")).Background(lipgloss.Color("236"))

	lines := make([]string, 0, len(favs))
	for i, f := range favs {
		line := "★ " + f.Label()
		if m.focus == FocusFavorites && i == m.favoriteIndex {
			lines = append(lines, highlightStyle.Render(line))
			continue
		}
		lines = append(lines, itemStyle.Render(line))
	}
	return lines
}

func renderExampleGrid(m Model, examples []home.Example) string {
	width := 30
	if m.windowWidth > 0 {
		width = (promptWidth(m.windowWidth) + 4) / exampleColumns
	}
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(width - 2)
	selectedStyle := cardStyle.Copy().BorderForeground(lipgloss.Color("46"))
	titleStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	iconStyle := mutedStyle.Copy().Italic(true)

	var rows []string
	for start := 0; start < len(examples); start += exampleColumns {
		end := start + exampleColumns
		if end > len(examples) {
			end = len(examples)
		}
		cards := make([]string, 0, exampleColumns)
		for i := start; i < end; i++ {
			ex := examples[i]
			body := titleStyle.Render(ex.Title) + "\n" + mutedStyle.Render(ex.Description)
			if len(ex.Icons) > 0 {
				body += "\n" + iconStyle.Render(strings.Join(ex.Icons, " · "))
			}
			style := cardStyle
			if m.focus == FocusExamples && i == m.exampleIndex {
				style = selectedStyle
			}
			cards = append(cards, style.Render(body))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
